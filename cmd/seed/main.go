// seed is a one-shot tool that installs the demo merchant dataset: one
// merchant, its menu, two weeks of order lines, current stock counts, and
// starter notification rules. Re-running it replaces the previous demo data.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"insight-engine/internal/store"

	"github.com/joho/godotenv"
)

// demoMerchantID matches the default merchant used by cmd/app when
// MERCHANT_ID is not set.
const demoMerchantID = "1d4f2"

type seedItem struct {
	id       int
	name     string
	category string
	price    string
}

var menu = []seedItem{
	{1, "Nasi Lemak Special", "Rice", "12.50"},
	{2, "Nasi Lemak Ayam", "Rice", "10.00"},
	{3, "Teh Tarik", "Drinks", "3.50"},
	{4, "Kopi O", "Drinks", "2.80"},
	{5, "Roti Canai", "Bread", "2.50"},
	{6, "Mee Goreng Mamak", "Noodles", "9.00"},
	{7, "Ayam Goreng Berempah", "Sides", "6.50"},
	{8, "Sambal Sotong", "Sides", "11.00"},
}

type seedStock struct {
	name  string
	qty   int
	units string
}

var stockCounts = []seedStock{
	{"Nasi Lemak Special", 25, "plates"},
	{"Mee Goreng Mamak", 20, "plates"},
	{"Teh Tarik", 40, "cups"},
	{"Roti Canai", 30, "pieces"},
	{"Ayam Goreng Berempah", 18, "pieces"},
	{"Sambal Sotong", 8, "portions"},
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := store.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing previous demo data...")
	for _, q := range []string{
		"DELETE FROM order_lines WHERE merchant_id = $1",
		"DELETE FROM inventory_log WHERE merchant_id = $1",
		"DELETE FROM notification_rules WHERE merchant_id = $1",
		"DELETE FROM products WHERE merchant_id = $1",
	} {
		if _, err := tx.Exec(ctx, q, demoMerchantID); err != nil {
			log.Fatalf("Failed to clear demo data: %v", err)
		}
	}

	log.Println("Restoring merchant...")
	_, err = tx.Exec(ctx, `
		INSERT INTO merchants (merchant_id, merchant_name, join_date, city_name)
		VALUES ($1, 'Nasi Lemak Corner', '2023-06-01', 'Kuala Lumpur')
		ON CONFLICT (merchant_id) DO UPDATE
		  SET merchant_name = EXCLUDED.merchant_name,
		      join_date = EXCLUDED.join_date,
		      city_name = EXCLUDED.city_name;
	`, demoMerchantID)
	if err != nil {
		log.Fatalf("Failed to restore merchant: %v", err)
	}

	log.Println("Restoring menu...")
	for _, item := range menu {
		_, err = tx.Exec(ctx, `
			INSERT INTO products (merchant_id, item_id, item_name, category, item_price)
			VALUES ($1, $2, $3, $4, $5);
		`, demoMerchantID, item.id, item.name, item.category, item.price)
		if err != nil {
			log.Fatalf("Failed to insert product %q: %v", item.name, err)
		}
	}

	log.Println("Generating order history...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	lineCount := 0
	for offset := 14; offset >= 1; offset-- {
		day := today.AddDate(0, 0, -offset)
		for n := 0; n < ordersForDay(day.Weekday()); n++ {
			orderID := fmt.Sprintf("SEED-%s-%03d", day.Format("20060102"), n+1)
			ts := day.Add(time.Duration(10+n) * time.Hour)
			for i := 0; i < 1+n%3; i++ {
				item := menu[(offset*5+n*3+i)%len(menu)]
				_, err = tx.Exec(ctx, `
					INSERT INTO order_lines (order_id, item_id, merchant_id, item_price, ts)
					VALUES ($1, $2, $3, $4, $5);
				`, orderID, item.id, demoMerchantID, item.price, ts)
				if err != nil {
					log.Fatalf("Failed to insert order line: %v", err)
				}
				lineCount++
			}
		}
	}
	log.Printf("Inserted %d order lines over 14 days.", lineCount)

	log.Println("Recording stock counts...")
	countedAt := today.Add(-2 * time.Hour)
	for _, s := range stockCounts {
		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_log (merchant_id, stock_name, stock_quantity, units, date_updated)
			VALUES ($1, $2, $3, $4, $5);
		`, demoMerchantID, s.name, s.qty, s.units, countedAt)
		if err != nil {
			log.Fatalf("Failed to insert stock count for %q: %v", s.name, err)
		}
	}

	log.Println("Installing starter notification rules...")
	_, err = tx.Exec(ctx, `
		INSERT INTO notification_rules (merchant_id, product_name, threshold, enabled, units)
		VALUES
		  ($1, 'Nasi Lemak Special', 10, true, 'plates'),
		  ($1, 'Sambal Sotong', 5, true, 'portions');
	`, demoMerchantID)
	if err != nil {
		log.Fatalf("Failed to insert notification rules: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
}

// ordersForDay sizes the demo order volume by weekday so weekend trends are
// visible in the report.
func ordersForDay(d time.Weekday) int {
	switch d {
	case time.Saturday, time.Sunday:
		return 11
	case time.Friday:
		return 9
	default:
		return 6
	}
}
