package core

import "context"

// DataFacade is the read-only boundary to merchant data. Every method returns
// a tabular snapshot; implementations fail with *DataUnavailableError when the
// backing source cannot be read, and GetMerchant fails with *NotFoundError for
// an unknown merchant. The analytics services own nothing behind this
// interface — it is the source of truth for all reference and transaction data.
type DataFacade interface {
	GetMerchant(ctx context.Context, merchantID string) (*Merchant, error)
	GetProducts(ctx context.Context, merchantID string) ([]Product, error)
	GetOrderLines(ctx context.Context, merchantID string, r DateRange) ([]OrderLine, error)
	GetInventoryLog(ctx context.Context, merchantID string) ([]InventoryLogEntry, error)
	GetNotificationRules(ctx context.Context, merchantID string) ([]NotificationRule, error)
}

// RuleStore is the write side of the notification rule registry.
// InsertRule assigns monotonically increasing IDs; UpdateRule and DeleteRule
// fail with *NotFoundError when the ID does not exist. A nil threshold or
// enabled pointer on UpdateRule leaves that field unchanged.
type RuleStore interface {
	InsertRule(ctx context.Context, rule NotificationRule) (int64, error)
	GetRule(ctx context.Context, id int64) (*NotificationRule, error)
	UpdateRule(ctx context.Context, id int64, threshold *int, enabled *bool) error
	DeleteRule(ctx context.Context, id int64) error
}

// InventoryAppender is the write side of the append-only inventory log.
// Implementations must maintain a per-(merchant, stock_name) index of the
// most recent entry so CurrentStock never rescans the full log; when two
// entries share a DateUpdated the later append wins.
type InventoryAppender interface {
	AppendInventory(ctx context.Context, entry InventoryLogEntry) error
	// CurrentStock returns the latest entry for the product, or nil when the
	// product has never been stocked.
	CurrentStock(ctx context.Context, merchantID, stockName string) (*InventoryLogEntry, error)
}
