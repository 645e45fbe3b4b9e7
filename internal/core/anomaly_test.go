package core_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"insight-engine/internal/core"
	"insight-engine/internal/store"
)

func TestAnomalyService_SalesDropThreshold(t *testing.T) {
	tests := []struct {
		name    string
		prior   string // revenue the day before, "" for no orders at all
		current string // revenue on the most recent day
		want    bool
	}{
		{"drop well past threshold", "100.00", "70.00", true},
		{"drop exactly at threshold", "20.00", "16.00", true},
		{"drop just under threshold", "20.00", "17.00", false},
		{"flat day", "20.00", "20.00", false},
		{"zero prior day never fires", "0.00", "0.00", false},
		{"no prior day data", "", "30.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			seedMenu(s)
			if tt.prior != "" {
				s.AddOrderLines(testMerchant, line("p1", 1, tt.prior, day(2024, time.March, 9).Add(12*time.Hour)))
			}
			s.AddOrderLines(testMerchant, line("c1", 1, tt.current, day(2024, time.March, 10).Add(12*time.Hour)))

			alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(alerts) > 0; got != tt.want {
				t.Errorf("fired = %v, want %v (alerts: %+v)", got, tt.want, alerts)
			}
			if tt.want && alerts[0].Type != core.AlertSalesDrop {
				t.Errorf("alert type = %s, want %s", alerts[0].Type, core.AlertSalesDrop)
			}
		})
	}
}

func TestAnomalyService_SalesDropAttribution(t *testing.T) {
	s := newStore(t)
	s.AddProducts(testMerchant,
		core.Product{ItemID: 1, ItemName: "Nasi Lemak", Category: "Rice", ItemPrice: dec("10.00"), MerchantID: testMerchant},
		core.Product{ItemID: 2, ItemName: "Mee Goreng", Category: "Noodles", ItemPrice: dec("5.00"), MerchantID: testMerchant},
	)
	prior := day(2024, time.March, 9).Add(11 * time.Hour)
	current := day(2024, time.March, 10).Add(11 * time.Hour)
	for i := 0; i < 8; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("p%d", i), 1, "10.00", prior))
	}
	for i := 0; i < 4; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("pn%d", i), 2, "5.00", prior))
	}
	for i := 0; i < 5; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("c%d", i), 1, "10.00", current))
	}
	for i := 0; i < 4; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("cn%d", i), 2, "5.00", current))
	}

	alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}

	a := alerts[0]
	if a.Message != "Sales dropped 30.0% compared to the previous day" {
		t.Errorf("message = %q", a.Message)
	}
	// Rice fell 80 → 50 while Noodles held steady, so Rice takes the blame.
	if !strings.Contains(a.Reason, "Rice") {
		t.Errorf("reason %q does not name the declining category", a.Reason)
	}
	if !strings.Contains(a.Recommendation, "Rice") {
		t.Errorf("recommendation %q does not target the declining category", a.Recommendation)
	}
}

func TestAnomalyService_LowStockThreshold(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want bool
	}{
		{"below threshold", 4, true},
		{"at threshold", 5, true},
		{"above threshold", 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Nasi Lemak", Threshold: 5, Enabled: true, Units: "plates"})
			s.AddInventory(core.InventoryLogEntry{
				MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: tt.qty, Units: "plates",
				DateUpdated: day(2024, time.March, 9),
			})

			alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(alerts) > 0; got != tt.want {
				t.Fatalf("fired = %v, want %v", got, tt.want)
			}
			if tt.want {
				wantMsg := fmt.Sprintf("Nasi Lemak is low on stock (%d plates remaining)", tt.qty)
				if alerts[0].Type != core.AlertLowStock || alerts[0].Message != wantMsg {
					t.Errorf("alert = %+v, want message %q", alerts[0], wantMsg)
				}
			}
		})
	}
}

func TestAnomalyService_RestockClearsAlert(t *testing.T) {
	s := newStore(t)
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Nasi Lemak", Threshold: 5, Enabled: true})
	s.AddInventory(core.InventoryLogEntry{
		MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: 4,
		DateUpdated: day(2024, time.March, 9),
	})
	svc := core.NewAnomalyService(s)

	alerts, err := svc.CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts before restock, want 1", len(alerts))
	}

	s.AddInventory(core.InventoryLogEntry{
		MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: 6,
		DateUpdated: day(2024, time.March, 10),
	})
	alerts, err = svc.CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("alert persisted after restock above threshold: %+v", alerts)
	}
}

func TestAnomalyService_DisabledRule(t *testing.T) {
	s := newStore(t)
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Nasi Lemak", Threshold: 5, Enabled: false})
	s.AddInventory(core.InventoryLogEntry{
		MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: 0,
		DateUpdated: day(2024, time.March, 9),
	})

	alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("disabled rule produced alerts: %+v", alerts)
	}
}

func TestAnomalyService_MalformedRuleSkipped(t *testing.T) {
	s := newStore(t)
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Ayam Goreng", Threshold: -1, Enabled: true})
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Burger Malaysia", Threshold: 5, Enabled: true})
	s.AddInventory(
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Ayam Goreng", StockQuantity: 0, DateUpdated: day(2024, time.March, 9)},
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Burger Malaysia", StockQuantity: 3, DateUpdated: day(2024, time.March, 9)},
	)

	alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("a malformed rule must not fail the run: %v", err)
	}
	if len(alerts) != 1 || !strings.Contains(alerts[0].Message, "Burger Malaysia") {
		t.Errorf("got %+v, want only the Burger Malaysia alert", alerts)
	}
}

func TestAnomalyService_FirstRuleGoverns(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []int // creation order for the same product
		want       bool
	}{
		{"earlier generous rule governs", []int{10, 0}, true},
		{"earlier strict rule governs", []int{0, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			for _, th := range tt.thresholds {
				s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Nasi Lemak", Threshold: th, Enabled: true})
			}
			s.AddInventory(core.InventoryLogEntry{
				MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: 5,
				DateUpdated: day(2024, time.March, 9),
			})

			alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(alerts) > 0; got != tt.want {
				t.Errorf("fired = %v, want %v", got, tt.want)
			}
		})
	}
}

func anomalyOrderingFixture(t *testing.T) *store.Memory {
	t.Helper()
	s := newStore(t)
	seedMenu(s)
	for i := 0; i < 10; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("p%d", i), 1, "10.00", day(2024, time.March, 9).Add(12*time.Hour)))
	}
	for i := 0; i < 7; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("c%d", i), 1, "10.00", day(2024, time.March, 10).Add(12*time.Hour)))
	}
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Teh Tarik", Threshold: 5, Enabled: true})
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Ayam Goreng", Threshold: 5, Enabled: true})
	s.AddInventory(
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Teh Tarik", StockQuantity: 1, DateUpdated: day(2024, time.March, 9)},
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Ayam Goreng", StockQuantity: 2, DateUpdated: day(2024, time.March, 9)},
	)
	return s
}

func TestAnomalyService_Ordering(t *testing.T) {
	svc := core.NewAnomalyService(anomalyOrderingFixture(t))

	alerts, err := svc.CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3: %+v", len(alerts), alerts)
	}
	if alerts[0].Type != core.AlertSalesDrop {
		t.Errorf("alerts[0].Type = %s, want the sales drop first", alerts[0].Type)
	}
	if !strings.HasPrefix(alerts[1].Message, "Ayam Goreng") || !strings.HasPrefix(alerts[2].Message, "Teh Tarik") {
		t.Errorf("low stock alerts not alphabetical: %q then %q", alerts[1].Message, alerts[2].Message)
	}
}

func TestAnomalyService_DeterministicForSnapshot(t *testing.T) {
	svc := core.NewAnomalyService(anomalyOrderingFixture(t))

	first, err := svc.CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same snapshot produced different alerts:\n%+v\n%+v", first, second)
	}
}

func TestAnomalyService_BestsellerReason(t *testing.T) {
	s := newStore(t)
	seedMenu(s)
	for i := 0; i < 5; i++ {
		s.AddOrderLines(testMerchant, line(fmt.Sprintf("o%d", i), 1, "10.00", day(2024, time.March, 10).Add(12*time.Hour)))
	}
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Nasi Lemak", Threshold: 5, Enabled: true, Units: "plates"})
	s.AddRule(core.NotificationRule{MerchantID: testMerchant, ProductName: "Cendol", Threshold: 5, Enabled: true, Units: "cups"})
	s.AddInventory(
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Nasi Lemak", StockQuantity: 2, Units: "plates", DateUpdated: day(2024, time.March, 10)},
		core.InventoryLogEntry{MerchantID: testMerchant, StockName: "Cendol", StockQuantity: 1, Units: "cups", DateUpdated: day(2024, time.March, 10)},
	)

	alerts, err := core.NewAnomalyService(s).CheckAnomalies(context.Background(), testMerchant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[1].Reason, "top 3 sellers") {
		t.Errorf("bestseller reason missing ranking context: %q", alerts[1].Reason)
	}
	if strings.Contains(alerts[0].Reason, "sellers") {
		t.Errorf("non-bestseller got ranking wording: %q", alerts[0].Reason)
	}
}

func TestAnomalyService_UnknownMerchant(t *testing.T) {
	_, err := core.NewAnomalyService(newStore(t)).CheckAnomalies(context.Background(), "ghost")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}
