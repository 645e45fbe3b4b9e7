package core

import "time"

// InventoryLogEntry is one append-only record of a stock count for a product.
// The log is never mutated or compacted: the current quantity of a
// (merchant_id, stock_name) pair is the entry with the greatest DateUpdated,
// ties resolved in favor of the later append.
type InventoryLogEntry struct {
	MerchantID    string    `json:"merchant_id"`
	StockName     string    `json:"stock_name"`
	StockQuantity int       `json:"stock_quantity"`
	Units         string    `json:"units"`
	DateUpdated   time.Time `json:"date_updated"`
}

// StockUpdate is one requested quantity change within a batch.
type StockUpdate struct {
	ProductName string
	NewQuantity int
	Units       string
}

// BatchStatus is the overall outcome of a stock update batch.
type BatchStatus string

const (
	BatchSuccess        BatchStatus = "success"
	BatchPartialSuccess BatchStatus = "partial_success"
)

// StockItemResult records the outcome for a single update in a batch.
// Reason is set only when Applied is false.
type StockItemResult struct {
	ProductName string
	Applied     bool
	Reason      string
}

// StockUpdateResult is the envelope for a completed batch. Failed items are
// data, not errors: the batch never aborts because one entry was malformed.
// TriggeredLowStock lists products from this batch whose new quantity sits at
// or below an enabled rule threshold, in first-touched order.
type StockUpdateResult struct {
	Status            BatchStatus
	Items             []StockItemResult
	TriggeredLowStock []string
}

// latestStockIndex builds the per-product index over an inventory snapshot:
// stock_name → position of its most recent entry. Later entries win ties on
// DateUpdated, matching append order.
func latestStockIndex(entries []InventoryLogEntry) map[string]int {
	idx := make(map[string]int, len(entries))
	for i, e := range entries {
		prev, ok := idx[e.StockName]
		if !ok || !e.DateUpdated.Before(entries[prev].DateUpdated) {
			idx[e.StockName] = i
		}
	}
	return idx
}

// CurrentStockLevels collapses an inventory snapshot to its latest-wins view,
// one entry per product. Order is unspecified; callers sort as needed.
func CurrentStockLevels(entries []InventoryLogEntry) []InventoryLogEntry {
	idx := latestStockIndex(entries)
	out := make([]InventoryLogEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, entries[i])
	}
	return out
}
