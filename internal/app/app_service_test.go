package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"insight-engine/internal/app"
	"insight-engine/internal/core"
	"insight-engine/internal/store"

	"github.com/shopspring/decimal"
)

func newApp(t *testing.T) (app.ApplicationService, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	s.AddMerchant(core.Merchant{
		MerchantID:   "m1",
		MerchantName: "Warung Selera",
		JoinDate:     time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
		CityName:     "Kuala Lumpur",
	})
	svc := app.NewAppService(
		s,
		core.NewReportService(s),
		core.NewAnomalyService(s),
		core.NewRuleService(s, s),
		core.NewStockService(s, s),
		nil,
	)
	return svc, s
}

func TestAppService_GetDailyReportWireShape(t *testing.T) {
	svc, s := newApp(t)
	price := decimal.RequireFromString("10.00")
	s.AddProducts("m1", core.Product{ItemID: 1, ItemName: "Nasi Lemak", Category: "Rice", ItemPrice: price, MerchantID: "m1"})
	s.AddOrderLines("m1", core.OrderLine{
		OrderID: "a", ItemID: 1, MerchantID: "m1", ItemPrice: price,
		Timestamp: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
	})
	s.AddInventory(
		core.InventoryLogEntry{MerchantID: "m1", StockName: "Nasi Lemak", StockQuantity: 4, Units: "plates", DateUpdated: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)},
		core.InventoryLogEntry{MerchantID: "m1", StockName: "Cendol", StockQuantity: 5, Units: "cups", DateUpdated: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)},
	)

	rep, err := svc.GetDailyReport(context.Background(), "m1", "2024-03-10", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Date != "2024-03-10" || rep.WindowDays != 7 {
		t.Errorf("report header = %s / %d", rep.Date, rep.WindowDays)
	}
	if rep.SalesToday != 10 || rep.OrdersToday != 1 {
		t.Errorf("today = %f / %d, want 10 / 1", rep.SalesToday, rep.OrdersToday)
	}
	if len(rep.SalesTrend.Labels) != 7 || len(rep.SalesTrend.Data) != 7 {
		t.Fatalf("trend arrays not parallel: %d labels, %d points", len(rep.SalesTrend.Labels), len(rep.SalesTrend.Data))
	}
	if rep.SalesTrend.Labels[0] != "2024-03-04" || rep.SalesTrend.Labels[6] != "2024-03-10" {
		t.Errorf("labels = %v", rep.SalesTrend.Labels)
	}
	if rep.SalesTrend.Data[6] != 10 || rep.SalesTrend.Data[5] != 0 {
		t.Errorf("data = %v", rep.SalesTrend.Data)
	}

	if len(rep.StockForecast) != 2 {
		t.Fatalf("forecast = %+v, want 2 entries", rep.StockForecast)
	}
	// One unit sold against 4 in stock over 7 days: 28 days left.
	sold := rep.StockForecast[0]
	if sold.ProductName != "Nasi Lemak" || sold.DaysLeft == nil || *sold.DaysLeft != 28 {
		t.Errorf("bounded forecast = %+v, want Nasi Lemak at 28 days", sold)
	}
	idle := rep.StockForecast[1]
	if idle.ProductName != "Cendol" || idle.DaysLeft != nil {
		t.Errorf("unsold product = %+v, want null days_left", idle)
	}

	_, err = svc.GetDailyReport(context.Background(), "m1", "10/03/2024", 7)
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("malformed date error = %v, want ValidationError", err)
	}
}

func TestAppService_ResolveReportDate(t *testing.T) {
	svc, s := newApp(t)
	price := decimal.RequireFromString("5.00")
	for _, d := range []int{8, 10} {
		s.AddOrderLines("m1", core.OrderLine{
			OrderID: "o", ItemID: 1, MerchantID: "m1", ItemPrice: price,
			Timestamp: time.Date(2024, time.March, d, 9, 0, 0, 0, time.UTC),
		})
	}

	tests := []struct {
		name string
		date string
		want string
	}{
		{"requested day has sales", "2024-03-08", "2024-03-08"},
		{"requested day without sales falls back to latest", "2024-03-09", "2024-03-10"},
		{"no date falls back to latest", "", "2024-03-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveReportDate(context.Background(), "m1", tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved %q, want %q", got, tt.want)
			}
		})
	}

	_, err := svc.ResolveReportDate(context.Background(), "m1", "next tuesday")
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("malformed date error = %v, want ValidationError", err)
	}
}

func TestAppService_ResolveReportDateWithoutSales(t *testing.T) {
	svc, _ := newApp(t)

	got, err := svc.ResolveReportDate(context.Background(), "m1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := time.Parse("2006-01-02", got)
	if err != nil {
		t.Fatalf("resolved %q does not parse: %v", got, err)
	}
	if age := time.Since(d); age <= 0 || age > 49*time.Hour {
		t.Errorf("resolved %q is not a recent past day", got)
	}
}

func TestAppService_CreateRuleDefaults(t *testing.T) {
	svc, _ := newApp(t)

	res, err := svc.CreateRule(context.Background(), app.CreateRuleRequest{
		MerchantID:  "m1",
		ProductName: "Nasi Lemak",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rule.Threshold != core.DefaultLowStockThreshold || !res.Rule.Enabled {
		t.Errorf("defaults not applied: %+v", res.Rule)
	}

	th, off := 2, false
	res, err = svc.CreateRule(context.Background(), app.CreateRuleRequest{
		MerchantID:  "m1",
		ProductName: "Teh Tarik",
		Threshold:   &th,
		Enabled:     &off,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rule.Threshold != 2 || res.Rule.Enabled {
		t.Errorf("explicit values not honored: %+v", res.Rule)
	}
}

func TestAppService_StockBatchWireShape(t *testing.T) {
	svc, _ := newApp(t)

	res, err := svc.ApplyStockUpdates(context.Background(), app.StockUpdateRequest{
		MerchantID: "m1",
		Updates:    []app.StockUpdateInput{{ProductName: "Nasi Lemak", NewQuantity: 9}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "success" || len(res.PerItemResults) != 1 || !res.PerItemResults[0].Applied {
		t.Errorf("batch = %+v", res)
	}
	// Marshals as [], never null.
	if res.TriggeredLowStock == nil {
		t.Errorf("triggered list is nil")
	}
}

func TestAppService_AnomaliesNeverNil(t *testing.T) {
	svc, _ := newApp(t)

	res, err := svc.CheckAnomalies(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Alerts == nil || len(res.Alerts) != 0 {
		t.Errorf("alerts = %#v, want empty non-nil slice", res.Alerts)
	}
}
