package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"insight-engine/internal/core"
	"insight-engine/internal/store"
)

func TestMemory_OrderLineRangeFilter(t *testing.T) {
	s := store.NewMemory()
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	price := decimal.RequireFromString("10.00")
	s.AddOrderLines("m1",
		core.OrderLine{OrderID: "a", ItemID: 1, MerchantID: "m1", ItemPrice: price, Timestamp: day(8).Add(9 * time.Hour)},
		core.OrderLine{OrderID: "b", ItemID: 1, MerchantID: "m1", ItemPrice: price, Timestamp: day(9).Add(12 * time.Hour)},
		core.OrderLine{OrderID: "c", ItemID: 1, MerchantID: "m1", ItemPrice: price, Timestamp: day(10).Add(23*time.Hour + 30*time.Minute)},
		core.OrderLine{OrderID: "d", ItemID: 1, MerchantID: "m1", ItemPrice: price, Timestamp: day(11).Add(10 * time.Minute)},
	)

	lines, err := s.GetOrderLines(context.Background(), "m1", core.DateRange{From: day(9), To: day(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0].OrderID != "b" || lines[1].OrderID != "c" {
		t.Errorf("lines = %+v, want b and c (To day included whole)", lines)
	}

	all, err := s.GetOrderLines(context.Background(), "m1", core.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unbounded range returned %d lines, want 4", len(all))
	}
}

func TestMemory_CurrentStockIndex(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	ts := time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)

	entries := []core.InventoryLogEntry{
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 10, DateUpdated: ts.AddDate(0, 0, -8)},
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 4, DateUpdated: ts},
		// Equal timestamp: the later append wins.
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 6, DateUpdated: ts},
	}
	for _, e := range entries {
		if err := s.AppendInventory(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	cur, err := s.CurrentStock(ctx, "m1", "Nasi Lemak")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur == nil || cur.StockQuantity != 6 {
		t.Errorf("current = %+v, want quantity 6", cur)
	}

	cur, err = s.CurrentStock(ctx, "m1", "Cendol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur != nil {
		t.Errorf("never-stocked product returned %+v, want nil", cur)
	}

	// An older entry appended late must not displace the current one.
	if err := s.AppendInventory(ctx, core.InventoryLogEntry{
		MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 99, DateUpdated: ts.AddDate(0, 0, -1),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	cur, err = s.CurrentStock(ctx, "m1", "Nasi Lemak")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur == nil || cur.StockQuantity != 6 {
		t.Errorf("backdated append displaced the index: %+v", cur)
	}
}

func TestMemory_RuleIDsMonotonic(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	// Seeding with an explicit id moves the counter past it.
	got := s.AddRule(core.NotificationRule{ID: 10, MerchantID: "m1", ProductName: "Nasi Lemak", Threshold: 5, Enabled: true})
	if got != 10 {
		t.Fatalf("seeded id = %d, want 10", got)
	}

	id1, err := s.InsertRule(ctx, core.NotificationRule{MerchantID: "m1", ProductName: "Teh Tarik", Threshold: 3, Enabled: true})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id2, err := s.InsertRule(ctx, core.NotificationRule{MerchantID: "m2", ProductName: "Cendol", Threshold: 2, Enabled: true})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id1 != 11 || id2 != 12 {
		t.Errorf("ids = %d, %d; want 11 and 12 across merchants", id1, id2)
	}
}
