package core

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindowDays is the trailing lookback used when a caller does not
// supply a window.
const DefaultWindowDays = 7

// restockSoonDays marks a forecast as urgent when the projected days of
// stock remaining falls at or below this horizon.
const restockSoonDays = 3

// ── Report types ──────────────────────────────────────────────────────────────

// TrendPoint is one day of a trend series. Sales is total revenue for the day.
type TrendPoint struct {
	Date  time.Time
	Sales decimal.Decimal
}

// ParetoEntry ranks one item by revenue over the report window.
// CumulativePct is the running share of total window revenue, in percent;
// entries are ordered so the sequence is non-decreasing and ends at 100.
type ParetoEntry struct {
	ItemID        int
	ItemName      string
	Revenue       decimal.Decimal
	CumulativePct float64
}

// StockForecast projects how long the current stock of one product lasts at
// the window's average daily consumption. Unbounded is the sentinel for zero
// consumption — DaysLeft is meaningless when it is set.
type StockForecast struct {
	ProductName         string
	CurrentStock        int
	Units               string
	AvgDailyConsumption decimal.Decimal
	DaysLeft            int
	Unbounded           bool
	RestockSoon         bool
}

// Report is the daily business-health report for one merchant.
// SalesTrend always holds exactly WindowDays points, one per calendar day
// ending at Date, zero-filled for days without sales. ItemSalesTrend holds
// one series on the same day grid per distinct item sold in the window.
type Report struct {
	MerchantID     string
	Date           time.Time
	WindowDays     int
	SalesToday     decimal.Decimal
	OrdersToday    int
	SalesTrend     []TrendPoint
	ItemSalesTrend map[string][]TrendPoint
	Pareto         []ParetoEntry
	StockForecast  []StockForecast
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportService computes daily reports over facade snapshots.
type ReportService interface {
	// BuildDailyReport builds the report for referenceDate with a trailing
	// window of windowDays calendar days (UTC). A zero referenceDate defaults
	// to yesterday; windowDays <= 0 defaults to DefaultWindowDays. An unknown
	// merchant fails with *NotFoundError; a window with no sales is a valid
	// zero-filled report, not an error.
	BuildDailyReport(ctx context.Context, merchantID string, referenceDate time.Time, windowDays int) (*Report, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportService struct {
	store DataFacade
}

// NewReportService constructs a ReportService reading through the given facade.
func NewReportService(store DataFacade) ReportService {
	return &reportService{store: store}
}

func (s *reportService) BuildDailyReport(ctx context.Context, merchantID string, referenceDate time.Time, windowDays int) (*Report, error) {
	if _, err := s.store.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	if referenceDate.IsZero() {
		referenceDate = time.Now().UTC().AddDate(0, 0, -1)
	}
	refDay := dayOf(referenceDate)
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	windowStart := refDay.AddDate(0, 0, -(windowDays - 1))

	lines, err := s.store.GetOrderLines(ctx, merchantID, DateRange{From: windowStart, To: refDay})
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

	productByID := make(map[int]Product, len(products))
	for _, p := range products {
		productByID[p.ItemID] = p
	}

	report := &Report{
		MerchantID: merchantID,
		Date:       refDay,
		WindowDays: windowDays,
	}

	// Sales and distinct orders on the reference day.
	report.SalesToday = decimal.Zero
	ordersSeen := make(map[string]bool)
	for _, l := range lines {
		if !dayOf(l.Timestamp).Equal(refDay) {
			continue
		}
		report.SalesToday = report.SalesToday.Add(l.ItemPrice)
		ordersSeen[l.OrderID] = true
	}
	report.OrdersToday = len(ordersSeen)

	report.SalesTrend = buildTrend(lines, windowStart, windowDays, func(OrderLine) bool { return true })
	report.ItemSalesTrend = buildItemTrends(lines, productByID, windowStart, windowDays)
	report.Pareto = paretoRanking(lines, productByID)
	report.StockForecast = buildStockForecast(lines, productByID, inventory, windowDays)

	return report, nil
}

// buildTrend produces one zero-filled point per calendar day of the window,
// summing the prices of lines accepted by the filter.
func buildTrend(lines []OrderLine, windowStart time.Time, windowDays int, include func(OrderLine) bool) []TrendPoint {
	byDay := make(map[time.Time]decimal.Decimal)
	for _, l := range lines {
		if !include(l) {
			continue
		}
		d := dayOf(l.Timestamp)
		byDay[d] = byDay[d].Add(l.ItemPrice)
	}

	trend := make([]TrendPoint, windowDays)
	for i := 0; i < windowDays; i++ {
		d := windowStart.AddDate(0, 0, i)
		trend[i] = TrendPoint{Date: d, Sales: byDay[d]}
	}
	return trend
}

// buildItemTrends produces a trend series per distinct item sold in the
// window, keyed by item name. Lines for unknown items are ignored.
func buildItemTrends(lines []OrderLine, productByID map[int]Product, windowStart time.Time, windowDays int) map[string][]TrendPoint {
	sold := make(map[int]bool)
	for _, l := range lines {
		sold[l.ItemID] = true
	}

	trends := make(map[string][]TrendPoint, len(sold))
	for itemID := range sold {
		p, ok := productByID[itemID]
		if !ok {
			continue
		}
		id := itemID
		trends[p.ItemName] = buildTrend(lines, windowStart, windowDays, func(l OrderLine) bool {
			return l.ItemID == id
		})
	}
	return trends
}

// paretoRanking ranks items by descending window revenue with running
// cumulative percentage of total revenue. Ties are broken by item ID
// ascending so the order is stable across runs. An empty window yields an
// empty ranking.
func paretoRanking(lines []OrderLine, productByID map[int]Product) []ParetoEntry {
	revenue := make(map[int]decimal.Decimal)
	for _, l := range lines {
		revenue[l.ItemID] = revenue[l.ItemID].Add(l.ItemPrice)
	}

	entries := make([]ParetoEntry, 0, len(revenue))
	total := decimal.Zero
	for itemID, rev := range revenue {
		name := ""
		if p, ok := productByID[itemID]; ok {
			name = p.ItemName
		}
		entries = append(entries, ParetoEntry{ItemID: itemID, ItemName: name, Revenue: rev})
		total = total.Add(rev)
	}
	if total.IsZero() {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Revenue.Cmp(entries[j].Revenue); c != 0 {
			return c > 0
		}
		return entries[i].ItemID < entries[j].ItemID
	})

	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Revenue)
		entries[i].CumulativePct = running.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return entries
}

// buildStockForecast projects days of stock remaining for every product with
// an inventory record. Consumption counts order lines per item over the
// window; the division floors via integer arithmetic. Products consuming
// nothing get the unbounded sentinel. Results are ordered most urgent first:
// bounded forecasts by DaysLeft ascending, unbounded ones last, names
// breaking ties.
func buildStockForecast(lines []OrderLine, productByID map[int]Product, inventory []InventoryLogEntry, windowDays int) []StockForecast {
	unitsSold := make(map[string]int)
	for _, l := range lines {
		if p, ok := productByID[l.ItemID]; ok {
			unitsSold[p.ItemName]++
		}
	}

	idx := latestStockIndex(inventory)
	forecasts := make([]StockForecast, 0, len(idx))
	for name, i := range idx {
		entry := inventory[i]
		sold := unitsSold[name]

		f := StockForecast{
			ProductName:  name,
			CurrentStock: entry.StockQuantity,
			Units:        entry.Units,
		}
		if sold == 0 {
			f.Unbounded = true
		} else {
			f.AvgDailyConsumption = decimal.NewFromInt(int64(sold)).Div(decimal.NewFromInt(int64(windowDays)))
			f.DaysLeft = entry.StockQuantity * windowDays / sold
			f.RestockSoon = f.DaysLeft <= restockSoonDays
		}
		forecasts = append(forecasts, f)
	}

	sort.Slice(forecasts, func(i, j int) bool {
		a, b := forecasts[i], forecasts[j]
		if a.Unbounded != b.Unbounded {
			return !a.Unbounded
		}
		if !a.Unbounded && a.DaysLeft != b.DaysLeft {
			return a.DaysLeft < b.DaysLeft
		}
		return a.ProductName < b.ProductName
	})
	return forecasts
}

// salesByDay sums line revenue per UTC calendar day.
func salesByDay(lines []OrderLine) map[time.Time]decimal.Decimal {
	byDay := make(map[time.Time]decimal.Decimal)
	for _, l := range lines {
		d := dayOf(l.Timestamp)
		byDay[d] = byDay[d].Add(l.ItemPrice)
	}
	return byDay
}
