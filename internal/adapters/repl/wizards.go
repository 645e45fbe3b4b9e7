package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"insight-engine/internal/app"
)

// handleRestock runs an interactive stock count session.
func handleRestock(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, merchantID string) {
	fmt.Println("Recording new stock counts.")
	fmt.Println("Enter one count per line. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <quantity> <product name>")
	fmt.Println("  Example: 12 Nasi Lemak")

	var updates []app.StockUpdateInput
	for {
		fmt.Printf("  Count %d: ", len(updates)+1)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Stock update cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 2 {
			fmt.Println("  Invalid format. Use: <quantity> <product name>")
			continue
		}

		qty, err := strconv.Atoi(parts[0])
		if err != nil || qty < 0 {
			fmt.Println("  Invalid quantity.")
			continue
		}

		updates = append(updates, app.StockUpdateInput{
			ProductName: strings.Join(parts[1:], " "),
			NewQuantity: qty,
		})
	}

	if len(updates) == 0 {
		fmt.Println("No counts entered. Nothing applied.")
		return
	}

	result, err := svc.ApplyStockUpdates(ctx, app.StockUpdateRequest{
		MerchantID: merchantID,
		Updates:    updates,
	})
	if err != nil {
		fmt.Printf("[REPL] Error applying stock updates: %v\n", err)
		return
	}
	printBatch(result)
}
