package app

import "insight-engine/internal/core"

// MerchantOverviewResult is returned by GetMerchantOverview.
type MerchantOverviewResult struct {
	Merchant *core.Merchant `json:"merchant"`
	Products []core.Product `json:"products"`
}

// TrendSeries is the wire form of a day-by-day series: parallel label and
// value arrays, one slot per calendar day.
type TrendSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ParetoItem is one row of the revenue ranking.
type ParetoItem struct {
	ItemID        int     `json:"item_id"`
	ItemName      string  `json:"item_name"`
	Revenue       float64 `json:"revenue"`
	CumulativePct float64 `json:"cumulative_pct"`
}

// ForecastItem is one row of the stock depletion forecast. DaysLeft is null
// when nothing was consumed in the window, meaning the stock never runs out
// at the current pace.
type ForecastItem struct {
	ProductName         string  `json:"product_name"`
	CurrentStock        int     `json:"current_stock"`
	Units               string  `json:"units,omitempty"`
	AvgDailyConsumption float64 `json:"avg_daily_consumption"`
	DaysLeft            *int    `json:"days_left"`
	RestockSoon         bool    `json:"restock_soon"`
}

// ReportResult is returned by GetDailyReport.
type ReportResult struct {
	MerchantID     string                 `json:"merchant_id"`
	Date           string                 `json:"date"`
	WindowDays     int                    `json:"window_days"`
	SalesToday     float64                `json:"sales_today"`
	OrdersToday    int                    `json:"orders_today"`
	SalesTrend     TrendSeries            `json:"sales_trend"`
	ItemSalesTrend map[string]TrendSeries `json:"item_sales_trend"`
	Pareto         []ParetoItem           `json:"pareto"`
	StockForecast  []ForecastItem         `json:"stock_forecast"`
}

// AnomalyResult is returned by CheckAnomalies.
type AnomalyResult struct {
	MerchantID string       `json:"merchant_id"`
	Alerts     []core.Alert `json:"alerts"`
}

// InventoryResult is returned by GetInventory: the latest-wins stock level
// per product, ordered by product name.
type InventoryResult struct {
	MerchantID string                   `json:"merchant_id"`
	Items      []core.InventoryLogEntry `json:"items"`
}

// RuleListResult is returned by ListRules.
type RuleListResult struct {
	Rules []core.NotificationRule `json:"rules"`
}

// RuleResult is returned by CreateRule and UpdateRule.
type RuleResult struct {
	Rule *core.NotificationRule `json:"rule"`
}

// StockItemOutcome is the wire form of a single update's outcome.
type StockItemOutcome struct {
	ProductName string `json:"productName"`
	Applied     bool   `json:"applied"`
	Reason      string `json:"reason,omitempty"`
}

// StockBatchResult is the wire form of a completed stock update batch.
type StockBatchResult struct {
	Status            string             `json:"status"`
	PerItemResults    []StockItemOutcome `json:"perItemResults"`
	TriggeredLowStock []string           `json:"triggeredLowStockProducts"`
}

// ChatResult is returned by Chat. Data holds the dispatched operation's
// payload and is absent for small talk.
type ChatResult struct {
	Operation     string `json:"operation"`
	Reply         string `json:"reply,omitempty"`
	Data          any    `json:"data,omitempty"`
	Encouragement string `json:"word_of_encouragement"`
}
