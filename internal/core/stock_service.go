package core

import (
	"context"
	"fmt"
	"time"
)

// StockService applies batched stock mutations for a merchant and reports
// which updated products now sit at or below an enabled low-stock threshold.
type StockService interface {
	// ApplyStockUpdates validates and appends each update independently.
	// Invalid items are recorded as failures without aborting the batch;
	// the result status is "partial_success" when any item failed. After
	// the batch, low-stock rules are re-evaluated for the touched products
	// only.
	ApplyStockUpdates(ctx context.Context, merchantID string, updates []StockUpdate) (*StockUpdateResult, error)
}

type stockService struct {
	store DataFacade
	inv   InventoryAppender
	locks *keyedMutex
	now   func() time.Time
}

// NewStockService constructs a StockService over the given stores.
func NewStockService(store DataFacade, inv InventoryAppender) StockService {
	return &stockService{store: store, inv: inv, locks: newKeyedMutex(), now: time.Now}
}

func (s *stockService) ApplyStockUpdates(ctx context.Context, merchantID string, updates []StockUpdate) (*StockUpdateResult, error) {
	if _, err := s.store.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	// Appends for the same merchant are serialized so concurrent batches
	// cannot interleave their log entries.
	defer s.locks.lock(merchantID).Unlock()

	result := &StockUpdateResult{Status: BatchSuccess}
	applied := make(map[string]int)
	var touched []string

	for _, u := range updates {
		item := StockItemResult{ProductName: u.ProductName}
		switch {
		case u.ProductName == "":
			item.Reason = "productName must not be empty"
		case u.NewQuantity < 0:
			item.Reason = fmt.Sprintf("newQuantity must be a non-negative integer, got %d", u.NewQuantity)
		default:
			entry := InventoryLogEntry{
				MerchantID:    merchantID,
				StockName:     u.ProductName,
				StockQuantity: u.NewQuantity,
				Units:         u.Units,
				DateUpdated:   s.now().UTC(),
			}
			if err := s.inv.AppendInventory(ctx, entry); err != nil {
				item.Reason = fmt.Sprintf("append failed: %v", err)
				break
			}
			item.Applied = true
			if _, seen := applied[u.ProductName]; !seen {
				touched = append(touched, u.ProductName)
			}
			applied[u.ProductName] = u.NewQuantity
		}
		if !item.Applied {
			result.Status = BatchPartialSuccess
		}
		result.Items = append(result.Items, item)
	}

	triggered, err := s.triggeredLowStock(ctx, merchantID, applied, touched)
	if err != nil {
		return nil, err
	}
	result.TriggeredLowStock = triggered
	return result, nil
}

// triggeredLowStock re-evaluates low-stock rules against the quantities just
// written, restricted to the products this batch touched. The batch lock is
// still held, so the applied quantities are the latest entries.
func (s *stockService) triggeredLowStock(ctx context.Context, merchantID string, applied map[string]int, touched []string) ([]string, error) {
	if len(touched) == 0 {
		return nil, nil
	}
	rules, err := s.store.GetNotificationRules(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	effective := effectiveLowStockRules(rules)

	var triggered []string
	for _, name := range touched {
		rule, ok := effective[name]
		if !ok {
			continue
		}
		if applied[name] <= rule.Threshold {
			triggered = append(triggered, name)
		}
	}
	return triggered, nil
}
