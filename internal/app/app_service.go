package app

import (
	"context"
	"sort"
	"time"

	"insight-engine/internal/ai"
	"insight-engine/internal/core"
)

const dateLayout = "2006-01-02"

// encouragementMessage is appended to every chat response. The wording is
// fixed product copy, not model output.
const encouragementMessage = "You're doing great! Keep analyzing those metrics."

type appService struct {
	store     core.DataFacade
	reports   core.ReportService
	anomalies core.AnomalyService
	rules     core.RuleService
	stock     core.StockService
	agent     *ai.Agent
	registry  *ai.OperationRegistry
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	store core.DataFacade,
	reports core.ReportService,
	anomalies core.AnomalyService,
	rules core.RuleService,
	stock core.StockService,
	agent *ai.Agent,
) ApplicationService {
	s := &appService{
		store:     store,
		reports:   reports,
		anomalies: anomalies,
		rules:     rules,
		stock:     stock,
		agent:     agent,
	}
	s.registry = s.buildRegistry()
	return s
}

// ── Reports and anomalies ─────────────────────────────────────────────────────

func (s *appService) GetMerchantOverview(ctx context.Context, merchantID string) (*MerchantOverviewResult, error) {
	merchant, err := s.store.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	products, err := s.store.GetProducts(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return &MerchantOverviewResult{Merchant: merchant, Products: products}, nil
}

func (s *appService) GetDailyReport(ctx context.Context, merchantID, date string, windowDays int) (*ReportResult, error) {
	var ref time.Time
	if date != "" {
		var err error
		ref, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, &core.ValidationError{Field: "date", Reason: "must be formatted YYYY-MM-DD"}
		}
	}

	rep, err := s.reports.BuildDailyReport(ctx, merchantID, ref, windowDays)
	if err != nil {
		return nil, err
	}
	return toReportResult(rep), nil
}

func (s *appService) CheckAnomalies(ctx context.Context, merchantID string) (*AnomalyResult, error) {
	alerts, err := s.anomalies.CheckAnomalies(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	return &AnomalyResult{MerchantID: merchantID, Alerts: alerts}, nil
}

func (s *appService) GetInventory(ctx context.Context, merchantID string) (*InventoryResult, error) {
	if _, err := s.store.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}
	entries, err := s.store.GetInventoryLog(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	items := core.CurrentStockLevels(entries)
	sort.Slice(items, func(i, j int) bool { return items[i].StockName < items[j].StockName })
	return &InventoryResult{MerchantID: merchantID, Items: items}, nil
}

// ── Notification rules ────────────────────────────────────────────────────────

func (s *appService) ListRules(ctx context.Context, merchantID string) (*RuleListResult, error) {
	rules, err := s.rules.ListRules(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []core.NotificationRule{}
	}
	return &RuleListResult{Rules: rules}, nil
}

func (s *appService) CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleResult, error) {
	threshold := core.DefaultLowStockThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule, err := s.rules.CreateRule(ctx, req.MerchantID, req.ProductName, threshold, enabled, req.Units)
	if err != nil {
		return nil, err
	}
	return &RuleResult{Rule: rule}, nil
}

func (s *appService) UpdateRule(ctx context.Context, ruleID int64, req UpdateRuleRequest) (*RuleResult, error) {
	rule, err := s.rules.UpdateRule(ctx, ruleID, core.UpdateRuleInput{
		Threshold: req.Threshold,
		Enabled:   req.Enabled,
	})
	if err != nil {
		return nil, err
	}
	return &RuleResult{Rule: rule}, nil
}

func (s *appService) DeleteRule(ctx context.Context, ruleID int64) error {
	return s.rules.DeleteRule(ctx, ruleID)
}

// ── Stock updates ─────────────────────────────────────────────────────────────

func (s *appService) ApplyStockUpdates(ctx context.Context, req StockUpdateRequest) (*StockBatchResult, error) {
	updates := make([]core.StockUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = core.StockUpdate{
			ProductName: u.ProductName,
			NewQuantity: u.NewQuantity,
			Units:       u.Units,
		}
	}

	res, err := s.stock.ApplyStockUpdates(ctx, req.MerchantID, updates)
	if err != nil {
		return nil, err
	}

	out := &StockBatchResult{
		Status:            string(res.Status),
		PerItemResults:    make([]StockItemOutcome, 0, len(res.Items)),
		TriggeredLowStock: res.TriggeredLowStock,
	}
	for _, item := range res.Items {
		out.PerItemResults = append(out.PerItemResults, StockItemOutcome{
			ProductName: item.ProductName,
			Applied:     item.Applied,
			Reason:      item.Reason,
		})
	}
	if out.TriggeredLowStock == nil {
		out.TriggeredLowStock = []string{}
	}
	return out, nil
}

// ── Chat ──────────────────────────────────────────────────────────────────────

func (s *appService) ResolveReportDate(ctx context.Context, merchantID, date string) (string, error) {
	var requested time.Time
	if date != "" {
		var err error
		requested, err = time.Parse(dateLayout, date)
		if err != nil {
			return "", &core.ValidationError{Field: "date", Reason: "must be formatted YYYY-MM-DD"}
		}
	}

	lines, err := s.store.GetOrderLines(ctx, merchantID, core.DateRange{})
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return time.Now().UTC().AddDate(0, 0, -1).Format(dateLayout), nil
	}

	var latest time.Time
	days := make(map[time.Time]bool, len(lines))
	for _, l := range lines {
		d := core.Day(l.Timestamp)
		days[d] = true
		if d.After(latest) {
			latest = d
		}
	}
	if !requested.IsZero() && days[core.Day(requested)] {
		return requested.Format(dateLayout), nil
	}
	return latest.Format(dateLayout), nil
}

func (s *appService) Chat(ctx context.Context, merchantID, message string) (*ChatResult, error) {
	intent, err := s.agent.InterpretQuery(ctx, message, s.registry.PromptCatalog())
	if err != nil {
		return nil, &core.DataUnavailableError{Source: "assistant", Err: err}
	}

	result := &ChatResult{
		Operation:     intent.Operation,
		Reply:         intent.Reply,
		Encouragement: encouragementMessage,
	}

	op, ok := s.registry.Get(intent.Operation)
	if !ok {
		result.Operation = "small_talk"
		return result, nil
	}

	data, err := op.Handler(ctx, merchantID, intent.Parameters)
	if err != nil {
		return nil, err
	}
	result.Data = data
	return result, nil
}

// buildRegistry wires every chat-reachable operation. Descriptions are part
// of the classification prompt, so they name the parameters each operation
// reads.
func (s *appService) buildRegistry() *ai.OperationRegistry {
	reg := ai.NewOperationRegistry()

	reg.Register(ai.OperationDefinition{
		Name:        "get_merchant_info",
		Description: "Show the merchant profile and product catalog. No parameters.",
		Handler: func(ctx context.Context, merchantID string, _ ai.QueryParameters) (any, error) {
			return s.GetMerchantOverview(ctx, merchantID)
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "get_daily_report",
		Description: "Daily sales report with trends, top sellers and a stock forecast. Parameters: date, window_days.",
		Handler: func(ctx context.Context, merchantID string, p ai.QueryParameters) (any, error) {
			// Conversational requests tolerate dates without data: fall back
			// to the most recent day that has sales.
			date, err := s.ResolveReportDate(ctx, merchantID, p.Date)
			if err != nil {
				return nil, err
			}
			return s.GetDailyReport(ctx, merchantID, date, p.WindowDays)
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "check_anomalies",
		Description: "Check for sales drops and low-stock alerts. No parameters.",
		Handler: func(ctx context.Context, merchantID string, _ ai.QueryParameters) (any, error) {
			return s.CheckAnomalies(ctx, merchantID)
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "get_inventory",
		Description: "Show current stock per product. No parameters.",
		Handler: func(ctx context.Context, merchantID string, _ ai.QueryParameters) (any, error) {
			return s.GetInventory(ctx, merchantID)
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "list_notification_rules",
		Description: "List the merchant's low-stock notification rules. No parameters.",
		Handler: func(ctx context.Context, merchantID string, _ ai.QueryParameters) (any, error) {
			return s.ListRules(ctx, merchantID)
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "create_notification_rule",
		Description: "Create a low-stock notification rule. Parameters: product_name, threshold (0 for the default), units.",
		Handler: func(ctx context.Context, merchantID string, p ai.QueryParameters) (any, error) {
			var threshold *int
			if p.Threshold > 0 {
				v := p.Threshold
				threshold = &v
			}
			return s.CreateRule(ctx, CreateRuleRequest{
				MerchantID:  merchantID,
				ProductName: p.ProductName,
				Threshold:   threshold,
				Units:       p.Units,
			})
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "set_rule_threshold",
		Description: "Change the threshold of an existing notification rule. Parameters: rule_id, threshold.",
		Handler: func(ctx context.Context, _ string, p ai.QueryParameters) (any, error) {
			v := p.Threshold
			return s.UpdateRule(ctx, p.RuleID, UpdateRuleRequest{Threshold: &v})
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "toggle_notification_rule",
		Description: "Enable or disable a notification rule. Parameters: rule_id, enabled.",
		Handler: func(ctx context.Context, _ string, p ai.QueryParameters) (any, error) {
			v := p.Enabled
			return s.UpdateRule(ctx, p.RuleID, UpdateRuleRequest{Enabled: &v})
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "delete_notification_rule",
		Description: "Delete a notification rule. Parameters: rule_id.",
		Handler: func(ctx context.Context, _ string, p ai.QueryParameters) (any, error) {
			if err := s.DeleteRule(ctx, p.RuleID); err != nil {
				return nil, err
			}
			return map[string]int64{"deleted_rule_id": p.RuleID}, nil
		},
	})
	reg.Register(ai.OperationDefinition{
		Name:        "update_stock",
		Description: "Record new stock counts, one per product. Parameters: updates (productName, newQuantity, units).",
		Handler: func(ctx context.Context, merchantID string, p ai.QueryParameters) (any, error) {
			req := StockUpdateRequest{MerchantID: merchantID}
			for _, u := range p.Updates {
				req.Updates = append(req.Updates, StockUpdateInput{
					ProductName: u.ProductName,
					NewQuantity: u.NewQuantity,
					Units:       u.Units,
				})
			}
			return s.ApplyStockUpdates(ctx, req)
		},
	})

	return reg
}

// ── Wire conversions ──────────────────────────────────────────────────────────

func toTrendSeries(points []core.TrendPoint) TrendSeries {
	s := TrendSeries{
		Labels: make([]string, len(points)),
		Data:   make([]float64, len(points)),
	}
	for i, p := range points {
		s.Labels[i] = p.Date.Format(dateLayout)
		s.Data[i] = p.Sales.InexactFloat64()
	}
	return s
}

func toReportResult(rep *core.Report) *ReportResult {
	out := &ReportResult{
		MerchantID:     rep.MerchantID,
		Date:           rep.Date.Format(dateLayout),
		WindowDays:     rep.WindowDays,
		SalesToday:     rep.SalesToday.InexactFloat64(),
		OrdersToday:    rep.OrdersToday,
		SalesTrend:     toTrendSeries(rep.SalesTrend),
		ItemSalesTrend: make(map[string]TrendSeries, len(rep.ItemSalesTrend)),
		Pareto:         make([]ParetoItem, 0, len(rep.Pareto)),
		StockForecast:  make([]ForecastItem, 0, len(rep.StockForecast)),
	}
	for name, series := range rep.ItemSalesTrend {
		out.ItemSalesTrend[name] = toTrendSeries(series)
	}
	for _, e := range rep.Pareto {
		out.Pareto = append(out.Pareto, ParetoItem{
			ItemID:        e.ItemID,
			ItemName:      e.ItemName,
			Revenue:       e.Revenue.InexactFloat64(),
			CumulativePct: e.CumulativePct,
		})
	}
	for _, f := range rep.StockForecast {
		item := ForecastItem{
			ProductName:         f.ProductName,
			CurrentStock:        f.CurrentStock,
			Units:               f.Units,
			AvgDailyConsumption: f.AvgDailyConsumption.InexactFloat64(),
			RestockSoon:         f.RestockSoon,
		}
		if !f.Unbounded {
			d := f.DaysLeft
			item.DaysLeft = &d
		}
		out.StockForecast = append(out.StockForecast, item)
	}
	return out
}
