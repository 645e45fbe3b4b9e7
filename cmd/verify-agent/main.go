package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"insight-engine/internal/ai"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey)
	ctx := context.Background()

	catalog := `get_merchant_info: Show the merchant profile and product catalog. No parameters.
get_daily_report: Daily sales report with trends, top sellers and a stock forecast. Parameters: date, window_days.
check_anomalies: Check for sales drops and low-stock alerts. No parameters.
get_inventory: Show current stock per product. No parameters.
list_notification_rules: List the merchant's low-stock notification rules. No parameters.
create_notification_rule: Create a low-stock notification rule. Parameters: product_name, threshold (0 for the default), units.
update_stock: Record new stock counts, one per product. Parameters: updates (productName, newQuantity, units).
`

	message := "how were my sales yesterday?"

	fmt.Printf("INTERPRETING MESSAGE: %s\n", message)
	intent, err := agent.InterpretQuery(ctx, message, catalog)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n--- INTENT ---\n")
	fmt.Printf("Operation: %s\n", intent.Operation)
	fmt.Printf("Reply: %s\n", intent.Reply)
	fmt.Printf("Parameters: date=%q window_days=%d product=%q threshold=%d\n",
		intent.Parameters.Date, intent.Parameters.WindowDays,
		intent.Parameters.ProductName, intent.Parameters.Threshold)
}
