package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant is immutable reference data describing one merchant account.
type Merchant struct {
	MerchantID   string    `json:"merchant_id"`
	MerchantName string    `json:"merchant_name"`
	JoinDate     time.Time `json:"join_date"`
	CityName     string    `json:"city_name"`
}

// Product is immutable reference data for one menu item.
// Category carries the cuisine tag used for anomaly attribution.
type Product struct {
	ItemID     int             `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Category   string          `json:"category"`
	ItemPrice  decimal.Decimal `json:"item_price"`
	MerchantID string          `json:"merchant_id"`
}

// OrderLine is one item sold within a transaction. OrderID groups lines into
// a single customer order; each line represents one unit of the item.
// Owned by the upstream ordering system — read-only here.
type OrderLine struct {
	OrderID    string          `json:"order_id"`
	ItemID     int             `json:"item_id"`
	MerchantID string          `json:"merchant_id"`
	ItemPrice  decimal.Decimal `json:"item_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NotificationRule is a per-merchant, per-product low-stock alert rule.
// Threshold is a non-negative unit count; Enabled gates evaluation.
// Multiple rules may target the same product — evaluation uses the rule
// with the lowest ID (first created).
type NotificationRule struct {
	ID          int64  `json:"id"`
	MerchantID  string `json:"merchant_id"`
	ProductName string `json:"productName"`
	Threshold   int    `json:"threshold"`
	Enabled     bool   `json:"enabled"`
	Units       string `json:"units"`
}

// DateRange bounds a query over order lines. A zero From or To leaves that
// side unbounded. Both bounds are calendar-day granular: To is inclusive of
// the entire To day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(dayOf(r.From)) {
		return false
	}
	if !r.To.IsZero() && !t.Before(dayOf(r.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Day returns the UTC calendar day that holds t. Exported for callers that
// need to build day-aligned ranges.
func Day(t time.Time) time.Time {
	return dayOf(t)
}
