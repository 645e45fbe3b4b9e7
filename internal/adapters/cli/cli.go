package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"insight-engine/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "report", "rep":
		if len(args) < 2 {
			log.Fatal("Usage: app report <merchant-id> [date] [window-days]")
		}
		date := ""
		if len(args) > 2 {
			date = args[2]
		}
		window := 0
		if len(args) > 3 {
			parsed, err := strconv.Atoi(args[3])
			if err != nil {
				log.Fatalf("Invalid window-days: %s", args[3])
			}
			window = parsed
		}
		result, err := svc.GetDailyReport(ctx, args[1], date, window)
		if err != nil {
			log.Fatalf("Failed to build report: %v", err)
		}
		printReport(result)

	case "anomalies", "anom":
		if len(args) < 2 {
			log.Fatal("Usage: app anomalies <merchant-id>")
		}
		result, err := svc.CheckAnomalies(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to check anomalies: %v", err)
		}
		printAlerts(result)

	case "inventory", "inv":
		if len(args) < 2 {
			log.Fatal("Usage: app inventory <merchant-id>")
		}
		result, err := svc.GetInventory(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load inventory: %v", err)
		}
		printInventory(result)

	case "rules":
		if len(args) < 2 {
			log.Fatal("Usage: app rules <merchant-id>")
		}
		result, err := svc.ListRules(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to list rules: %v", err)
		}
		printRules(result)

	case "chat":
		if len(args) < 3 {
			log.Fatal("Usage: app chat <merchant-id> \"<message>\"")
		}
		result, err := svc.Chat(ctx, args[1], args[2])
		if err != nil {
			log.Fatalf("Assistant error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: report, anomalies, inventory, rules, chat", args[0])
	}
}

func printReport(result *app.ReportResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "DAILY REPORT")
	fmt.Printf("  Merchant : %s\n", result.MerchantID)
	fmt.Printf("  Date     : %s (window %d days)\n", result.Date, result.WindowDays)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Sales today  : %12.2f\n", result.SalesToday)
	fmt.Printf("  Orders today : %12d\n", result.OrdersToday)

	fmt.Println()
	fmt.Printf("  %-14s %12s\n", "DATE", "SALES")
	fmt.Println(strings.Repeat("-", 62))
	for i, label := range result.SalesTrend.Labels {
		fmt.Printf("  %-14s %12.2f\n", label, result.SalesTrend.Data[i])
	}

	if len(result.Pareto) > 0 {
		fmt.Println()
		fmt.Printf("  %-8s %-28s %12s %8s\n", "ITEM", "NAME", "REVENUE", "CUM%")
		fmt.Println(strings.Repeat("-", 62))
		for _, p := range result.Pareto {
			fmt.Printf("  %-8d %-28s %12.2f %7.1f%%\n", p.ItemID, p.ItemName, p.Revenue, p.CumulativePct)
		}
	}

	if len(result.StockForecast) > 0 {
		fmt.Println()
		fmt.Printf("  %-28s %8s %10s %10s\n", "PRODUCT", "STOCK", "AVG/DAY", "DAYS LEFT")
		fmt.Println(strings.Repeat("-", 62))
		for _, f := range result.StockForecast {
			daysLeft := "-"
			if f.DaysLeft != nil {
				daysLeft = strconv.Itoa(*f.DaysLeft)
			}
			if f.RestockSoon {
				daysLeft += " (!)"
			}
			fmt.Printf("  %-28s %8d %10.2f %10s\n", f.ProductName, f.CurrentStock, f.AvgDailyConsumption, daysLeft)
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printAlerts(result *app.AnomalyResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  ANOMALY CHECK — %s\n", result.MerchantID)
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Alerts) == 0 {
		fmt.Println("  No anomalies detected.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	for _, a := range result.Alerts {
		fmt.Printf("  [%s]\n", strings.ToUpper(string(a.Type)))
		fmt.Printf("  Message        : %s\n", a.Message)
		fmt.Printf("  Reason         : %s\n", a.Reason)
		fmt.Printf("  Recommendation : %s\n", a.Recommendation)
		fmt.Println(strings.Repeat("-", 62))
	}
}

func printInventory(result *app.InventoryResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  CURRENT STOCK — %s\n", result.MerchantID)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-28s %10s %-10s %s\n", "PRODUCT", "QTY", "UNITS", "UPDATED")
	fmt.Println(strings.Repeat("-", 62))
	for _, e := range result.Items {
		fmt.Printf("  %-28s %10d %-10s %s\n", e.StockName, e.StockQuantity, e.Units, e.DateUpdated.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printRules(result *app.RuleListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "NOTIFICATION RULES")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-6s %-28s %10s %-8s\n", "ID", "PRODUCT", "THRESHOLD", "ENABLED")
	fmt.Println(strings.Repeat("-", 62))
	for _, rule := range result.Rules {
		fmt.Printf("  %-6d %-28s %10d %-8t\n", rule.ID, rule.ProductName, rule.Threshold, rule.Enabled)
	}
	fmt.Println(strings.Repeat("=", 62))
}
