package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"insight-engine/internal/core"
	"insight-engine/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// setupTestDB truncates and seeds a dedicated test database. The schema must
// already be migrated (run cmd/migrate against TEST_DATABASE_URL first).
func setupTestDB(t *testing.T) (*store.PG, *pgxpool.Pool) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE order_lines, inventory_log, notification_rules, products, merchants RESTART IDENTITY CASCADE;

		INSERT INTO merchants (merchant_id, merchant_name, join_date, city_name) VALUES
		('m1', 'Warung Selera', '2023-06-01', 'Kuala Lumpur');

		INSERT INTO products (item_id, item_name, category, item_price, merchant_id) VALUES
		(1, 'Nasi Lemak', 'Rice',   10.00, 'm1'),
		(2, 'Teh Tarik',  'Drinks',  4.50, 'm1');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return store.NewPG(pool), pool
}

func TestPG_MerchantLookup(t *testing.T) {
	pg, pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	m, err := pg.GetMerchant(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMerchant failed: %v", err)
	}
	if m.MerchantName != "Warung Selera" || m.CityName != "Kuala Lumpur" {
		t.Errorf("merchant = %+v", m)
	}

	_, err = pg.GetMerchant(ctx, "ghost")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown merchant error = %v, want NotFoundError", err)
	}
}

func TestPG_OrderLinesRange(t *testing.T) {
	pg, pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO order_lines (order_id, item_id, merchant_id, item_price, ts) VALUES
		('a', 1, 'm1', 10.00, '2024-03-08T09:00:00Z'),
		('b', 1, 'm1', 10.00, '2024-03-09T12:00:00Z'),
		('c', 2, 'm1',  4.50, '2024-03-10T23:30:00Z'),
		('d', 1, 'm1', 10.00, '2024-03-11T00:10:00Z');
	`)
	if err != nil {
		t.Fatalf("Failed to seed order lines: %v", err)
	}

	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }

	lines, err := pg.GetOrderLines(ctx, "m1", core.DateRange{From: day(9), To: day(10)})
	if err != nil {
		t.Fatalf("ranged query failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (From day and the whole To day)", len(lines))
	}
	if lines[0].OrderID != "b" || lines[1].OrderID != "c" {
		t.Errorf("lines = %+v, want b then c in timestamp order", lines)
	}
	if !lines[1].ItemPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("price scanned as %s, want 4.50", lines[1].ItemPrice)
	}

	all, err := pg.GetOrderLines(ctx, "m1", core.DateRange{})
	if err != nil {
		t.Fatalf("unbounded query failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d lines unbounded, want all 4", len(all))
	}
}

func TestPG_CurrentStockLatestWins(t *testing.T) {
	pg, pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	entries := []core.InventoryLogEntry{
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 10, Units: "plates", DateUpdated: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)},
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 4, Units: "plates", DateUpdated: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)},
		// Same timestamp as above: the later append must win.
		{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 6, Units: "plates", DateUpdated: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if err := pg.AppendInventory(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	cur, err := pg.CurrentStock(ctx, "m1", "Nasi Lemak")
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if cur == nil || cur.StockQuantity != 6 {
		t.Errorf("current = %+v, want the last appended quantity 6", cur)
	}

	cur, err = pg.CurrentStock(ctx, "m1", "Cendol")
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if cur != nil {
		t.Errorf("never-stocked product returned %+v, want nil", cur)
	}
}

func TestPG_RuleLifecycle(t *testing.T) {
	pg, pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	first, err := pg.InsertRule(ctx, core.NotificationRule{MerchantID: "m1", ProductName: "Nasi Lemak", Threshold: 5, Enabled: true, Units: "plates"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := pg.InsertRule(ctx, core.NotificationRule{MerchantID: "m1", ProductName: "Teh Tarik", Threshold: 3, Enabled: true, Units: "cups"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if second <= first {
		t.Errorf("ids not increasing: %d then %d", first, second)
	}

	th := 2
	if err := pg.UpdateRule(ctx, first, &th, nil); err != nil {
		t.Fatalf("update threshold: %v", err)
	}
	r, err := pg.GetRule(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Threshold != 2 || !r.Enabled {
		t.Errorf("after partial update: %+v, want threshold 2 and enabled untouched", r)
	}

	off := false
	if err := pg.UpdateRule(ctx, first, nil, &off); err != nil {
		t.Fatalf("update enabled: %v", err)
	}
	r, err = pg.GetRule(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Threshold != 2 || r.Enabled {
		t.Errorf("after enable toggle: %+v", r)
	}

	var nf *core.NotFoundError
	if err := pg.UpdateRule(ctx, 99999, &th, nil); !errors.As(err, &nf) {
		t.Errorf("update of missing rule = %v, want NotFoundError", err)
	}

	if err := pg.DeleteRule(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := pg.DeleteRule(ctx, first); !errors.As(err, &nf) {
		t.Errorf("second delete = %v, want NotFoundError", err)
	}

	rules, err := pg.GetNotificationRules(ctx, "m1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != second {
		t.Errorf("rules = %+v, want only the second rule", rules)
	}
}

// TestPG_ReportAndAnomalies runs the services against the real store to make
// sure the SQL snapshots feed them correctly.
func TestPG_ReportAndAnomalies(t *testing.T) {
	pg, pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO order_lines (order_id, item_id, merchant_id, item_price, ts) VALUES
		('a', 1, 'm1', 10.00, '2024-03-10T10:00:00Z'),
		('a', 2, 'm1',  4.50, '2024-03-10T10:05:00Z'),
		('b', 1, 'm1', 10.00, '2024-03-09T12:00:00Z');
	`)
	if err != nil {
		t.Fatalf("Failed to seed order lines: %v", err)
	}
	err = pg.AppendInventory(ctx, core.InventoryLogEntry{
		MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 4, Units: "plates",
		DateUpdated: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("append inventory: %v", err)
	}
	if _, err := pg.InsertRule(ctx, core.NotificationRule{MerchantID: "m1", ProductName: "Nasi Lemak", Threshold: 5, Enabled: true, Units: "plates"}); err != nil {
		t.Fatalf("insert rule: %v", err)
	}

	rep, err := core.NewReportService(pg).BuildDailyReport(ctx, "m1", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), 7)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !rep.SalesToday.Equal(decimal.RequireFromString("14.50")) || rep.OrdersToday != 1 {
		t.Errorf("report today = %s / %d orders, want 14.50 / 1", rep.SalesToday, rep.OrdersToday)
	}
	if len(rep.SalesTrend) != 7 || !rep.SalesTrend[5].Sales.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("trend = %+v", rep.SalesTrend)
	}
	if len(rep.StockForecast) != 1 || rep.StockForecast[0].DaysLeft != 14 {
		t.Errorf("forecast = %+v, want Nasi Lemak at 14 days", rep.StockForecast)
	}

	alerts, err := core.NewAnomalyService(pg).CheckAnomalies(ctx, "m1")
	if err != nil {
		t.Fatalf("anomalies: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != core.AlertLowStock {
		t.Errorf("alerts = %+v, want one low stock alert", alerts)
	}
}
