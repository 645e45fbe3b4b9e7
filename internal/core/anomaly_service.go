package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// salesDropThreshold is the default day-over-day decline ratio that raises a
// sales_drop_dod alert.
var salesDropThreshold = decimal.NewFromFloat(0.20)

// bestsellerTopN is how many leading Pareto items count as bestsellers when
// wording low-stock reasons.
const bestsellerTopN = 3

// ── Alert types ───────────────────────────────────────────────────────────────

type AlertType string

const (
	AlertSalesDrop AlertType = "sales_drop_dod"
	AlertLowStock  AlertType = "low_stock"
)

// Alert is an ephemeral anomaly finding. Computed per request, never stored.
type Alert struct {
	Type           AlertType `json:"type"`
	Message        string    `json:"message"`
	Reason         string    `json:"reason"`
	Recommendation string    `json:"recommendation"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// AnomalyService evaluates sales and stock anomalies for one merchant.
type AnomalyService interface {
	// CheckAnomalies returns alerts ordered most severe first: sales_drop_dod
	// before low_stock, low-stock alerts alphabetical by product. Given
	// identical snapshots the result is identical — the evaluation takes no
	// wall-clock input and has no side effects beyond a warning log for
	// malformed rules, which are skipped rather than failing the run.
	CheckAnomalies(ctx context.Context, merchantID string) ([]Alert, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type anomalyService struct {
	store DataFacade
}

// NewAnomalyService constructs an AnomalyService reading through the facade.
func NewAnomalyService(store DataFacade) AnomalyService {
	return &anomalyService{store: store}
}

func (s *anomalyService) CheckAnomalies(ctx context.Context, merchantID string) ([]Alert, error) {
	if _, err := s.store.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	lines, err := s.store.GetOrderLines(ctx, merchantID, DateRange{})
	if err != nil {
		return nil, err
	}
	products, err := s.store.GetProducts(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	inventory, err := s.store.GetInventoryLog(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.GetNotificationRules(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	productByID := make(map[int]Product, len(products))
	for _, p := range products {
		productByID[p.ItemID] = p
	}

	var alerts []Alert
	if a := detectSalesDrop(lines, productByID); a != nil {
		alerts = append(alerts, *a)
	}
	alerts = append(alerts, detectLowStock(rules, inventory, bestsellerNames(lines, productByID))...)
	return alerts, nil
}

// detectSalesDrop compares the most recent day that has order data against
// the prior calendar day. Both days come from the snapshot itself so the
// check stays pure. A zero prior day never fires regardless of the current
// day — the ratio is undefined, not anomalous.
func detectSalesDrop(lines []OrderLine, productByID map[int]Product) *Alert {
	byDay := salesByDay(lines)
	if len(byDay) == 0 {
		return nil
	}

	var currentDay time.Time
	for d := range byDay {
		if d.After(currentDay) {
			currentDay = d
		}
	}
	priorDay := currentDay.AddDate(0, 0, -1)

	prior := byDay[priorDay]
	current := byDay[currentDay]
	if !prior.IsPositive() {
		return nil
	}
	drop := prior.Sub(current)
	if drop.LessThan(prior.Mul(salesDropThreshold)) {
		return nil
	}
	dropPct := drop.Div(prior).Mul(decimal.NewFromInt(100)).InexactFloat64()

	category, lost := largestCategoryDecline(lines, productByID, priorDay, currentDay)

	a := &Alert{
		Type:    AlertSalesDrop,
		Message: fmt.Sprintf("Sales dropped %.1f%% compared to the previous day", dropPct),
	}
	if category != "" {
		a.Reason = fmt.Sprintf("The %s category lost the most revenue (%s) versus the prior day", category, lost.StringFixed(2))
		a.Recommendation = fmt.Sprintf("Consider running a promotion on %s items to recover sales.", category)
	} else {
		a.Reason = "Revenue declined across categories"
		a.Recommendation = "Review yesterday's orders for missing bestsellers or outages."
	}
	return a
}

// largestCategoryDecline breaks the day-over-day delta out by product
// category and returns the category whose revenue fell the most in absolute
// terms, with the amount lost. Ties go to the alphabetically first category.
func largestCategoryDecline(lines []OrderLine, productByID map[int]Product, priorDay, currentDay time.Time) (string, decimal.Decimal) {
	decline := make(map[string]decimal.Decimal)
	for _, l := range lines {
		p, ok := productByID[l.ItemID]
		if !ok {
			continue
		}
		switch d := dayOf(l.Timestamp); {
		case d.Equal(priorDay):
			decline[p.Category] = decline[p.Category].Add(l.ItemPrice)
		case d.Equal(currentDay):
			decline[p.Category] = decline[p.Category].Sub(l.ItemPrice)
		}
	}

	best := ""
	bestLost := decimal.Zero
	for cat, lost := range decline {
		if lost.GreaterThan(bestLost) || (lost.Equal(bestLost) && best != "" && cat < best) {
			best = cat
			bestLost = lost
		}
	}
	return best, bestLost
}

// effectiveLowStockRules reduces the registry to at most one enabled, valid
// rule per product. When several enabled rules target one product the lowest
// rule ID governs. Rules with a malformed (negative) threshold are skipped
// with a warning so the rest of the evaluation still completes.
func effectiveLowStockRules(rules []NotificationRule) map[string]NotificationRule {
	effective := make(map[string]NotificationRule)
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if r.Threshold < 0 {
			log.Printf("skipping notification rule %d for %q: malformed threshold %d", r.ID, r.ProductName, r.Threshold)
			continue
		}
		if prev, ok := effective[r.ProductName]; !ok || r.ID < prev.ID {
			effective[r.ProductName] = r
		}
	}
	return effective
}

// detectLowStock evaluates the effective rules against the latest-wins stock
// view. Products with no inventory record cannot be evaluated and are
// skipped silently.
func detectLowStock(rules []NotificationRule, inventory []InventoryLogEntry, bestsellers map[string]bool) []Alert {
	effective := effectiveLowStockRules(rules)
	if len(effective) == 0 {
		return nil
	}

	idx := latestStockIndex(inventory)
	var alerts []Alert
	for name, rule := range effective {
		i, ok := idx[name]
		if !ok {
			continue
		}
		entry := inventory[i]
		if entry.StockQuantity > rule.Threshold {
			continue
		}

		units := entry.Units
		if units == "" {
			units = rule.Units
		}
		if units == "" {
			units = "units"
		}

		reason := fmt.Sprintf("Stock %d is at or below the alert threshold %d", entry.StockQuantity, rule.Threshold)
		if bestsellers[name] {
			reason = fmt.Sprintf("%s is one of your top %d sellers and stock %d is at or below the alert threshold %d",
				name, bestsellerTopN, entry.StockQuantity, rule.Threshold)
		}

		alerts = append(alerts, Alert{
			Type:           AlertLowStock,
			Message:        fmt.Sprintf("%s is low on stock (%d %s remaining)", name, entry.StockQuantity, units),
			Reason:         reason,
			Recommendation: fmt.Sprintf("Restock %s soon to avoid missed orders.", name),
		})
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Message < alerts[j].Message })
	return alerts
}

// bestsellerNames returns the top Pareto item names over the trailing default
// window ending at the snapshot's most recent order day.
func bestsellerNames(lines []OrderLine, productByID map[int]Product) map[string]bool {
	byDay := salesByDay(lines)
	if len(byDay) == 0 {
		return nil
	}
	var latest time.Time
	for d := range byDay {
		if d.After(latest) {
			latest = d
		}
	}
	windowStart := latest.AddDate(0, 0, -(DefaultWindowDays - 1))

	var windowed []OrderLine
	for _, l := range lines {
		d := dayOf(l.Timestamp)
		if !d.Before(windowStart) && !d.After(latest) {
			windowed = append(windowed, l)
		}
	}

	top := make(map[string]bool, bestsellerTopN)
	for i, e := range paretoRanking(windowed, productByID) {
		if i >= bestsellerTopN {
			break
		}
		if e.ItemName != "" {
			top[e.ItemName] = true
		}
	}
	return top
}
