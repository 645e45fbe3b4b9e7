package app

import "context"

// ApplicationService is the single interface all adapters (CLI, Web, chat
// dispatch) call. It decouples presentation from the analytics core.
// Implementations must contain no fmt.Println, no ANSI codes, and no display
// logic of any kind.
type ApplicationService interface {
	// GetMerchantOverview returns the merchant record with its product catalog.
	GetMerchantOverview(ctx context.Context, merchantID string) (*MerchantOverviewResult, error)

	// GetDailyReport builds the daily report. date is YYYY-MM-DD, empty for
	// the default (yesterday); windowDays <= 0 uses the default window.
	GetDailyReport(ctx context.Context, merchantID, date string, windowDays int) (*ReportResult, error)

	// CheckAnomalies evaluates sales and stock anomalies, most severe first.
	CheckAnomalies(ctx context.Context, merchantID string) (*AnomalyResult, error)

	// GetInventory returns the current stock level per product, collapsed
	// from the append-only inventory log.
	GetInventory(ctx context.Context, merchantID string) (*InventoryResult, error)

	// ListRules returns the merchant's notification rules in creation order.
	ListRules(ctx context.Context, merchantID string) (*RuleListResult, error)

	// CreateRule registers a low-stock rule. A nil threshold uses the
	// default; a nil enabled flag creates the rule active.
	CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleResult, error)

	// UpdateRule changes threshold and/or enabled on one rule.
	UpdateRule(ctx context.Context, ruleID int64, req UpdateRuleRequest) (*RuleResult, error)

	// DeleteRule removes a rule by id.
	DeleteRule(ctx context.Context, ruleID int64) error

	// ApplyStockUpdates records a batch of stock counts and reports which
	// updated products now sit at or below an alert threshold.
	ApplyStockUpdates(ctx context.Context, req StockUpdateRequest) (*StockBatchResult, error)

	// ResolveReportDate picks the report date for conversational requests:
	// the requested date if the merchant has sales on it, otherwise the most
	// recent date that has sales, otherwise yesterday.
	ResolveReportDate(ctx context.Context, merchantID, date string) (string, error)

	// Chat classifies a free-text message, dispatches the matching operation
	// and returns its payload alongside a conversational reply.
	Chat(ctx context.Context, merchantID, message string) (*ChatResult, error)
}
