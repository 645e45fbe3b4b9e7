package repl

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"insight-engine/internal/app"
)

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
	if len(result.Items) == 0 {
		fmt.Println("  No stock records found.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-28s %10s %-10s %s\n", "PRODUCT", "QTY", "UNITS", "UPDATED")
	fmt.Println(strings.Repeat("-", 62))
	for _, e := range result.Items {
		fmt.Printf("  %-28s %10d %-10s %s\n",
			e.StockName, e.StockQuantity, e.Units, e.DateUpdated.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printRules(result *app.RuleListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "NOTIFICATION RULES")
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Rules) == 0 {
		fmt.Println("  No rules configured. Use /watch to add one.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-6s %-28s %10s %-8s\n", "ID", "PRODUCT", "THRESHOLD", "ENABLED")
	fmt.Println(strings.Repeat("-", 62))
	for _, rule := range result.Rules {
		fmt.Printf("  %-6d %-28s %10d %-8t\n", rule.ID, rule.ProductName, rule.Threshold, rule.Enabled)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printBatch(result *app.StockBatchResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  Batch status: %s\n", strings.ToUpper(result.Status))
	fmt.Println(strings.Repeat("-", 62))
	for _, item := range result.PerItemResults {
		mark := "applied"
		if !item.Applied {
			mark = "REJECTED"
		}
		if item.Reason != "" {
			fmt.Printf("  %-28s %-9s %s\n", item.ProductName, mark, item.Reason)
		} else {
			fmt.Printf("  %-28s %-9s\n", item.ProductName, mark)
		}
	}
	if len(result.TriggeredLowStock) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Printf("  LOW STOCK: %s\n", strings.Join(result.TriggeredLowStock, ", "))
	}
	fmt.Println(strings.Repeat("-", 62))
}

func printOverview(result *app.MerchantOverviewResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %s — %s\n", result.Merchant.MerchantID, result.Merchant.MerchantName)
	fmt.Printf("  City   : %s\n", result.Merchant.CityName)
	fmt.Printf("  Joined : %s\n", result.Merchant.JoinDate.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-8s %-30s %-12s %8s\n", "ITEM", "NAME", "CATEGORY", "PRICE")
	fmt.Println(strings.Repeat("-", 62))
	for _, p := range result.Products {
		fmt.Printf("  %-8d %-30s %-12s %8s\n", p.ItemID, p.ItemName, p.Category, p.ItemPrice.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 62))
}

// printChat renders an assistant response: the conversational reply first,
// then the dispatched operation's payload in its table form.
func printChat(result *app.ChatResult) {
	if result.Reply != "" {
		fmt.Printf("\n[AI]: %s\n", result.Reply)
	}

	switch data := result.Data.(type) {
	case nil:
	case *app.ReportResult:
		printReport(data)
	case *app.AnomalyResult:
		printAlerts(data)
	case *app.InventoryResult:
		printInventory(data)
	case *app.RuleListResult:
		printRules(data)
	case *app.RuleResult:
		fmt.Printf("Rule %d: %s threshold %d (enabled: %t)\n",
			data.Rule.ID, data.Rule.ProductName, data.Rule.Threshold, data.Rule.Enabled)
	case *app.StockBatchResult:
		printBatch(data)
	case *app.MerchantOverviewResult:
		printOverview(data)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(data)
	}

	if result.Encouragement != "" {
		fmt.Printf("\n%s\n", result.Encouragement)
	}
}

func printHelp() {
	fmt.Println()
	fmt.Println("MERCHANT INSIGHT ASSISTANT — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  ANALYTICS")
	fmt.Println("  /report [date] [window-days]     Daily report: sales, trends, pareto, forecast")
	fmt.Println("  /anomalies                       Run anomaly checks (sales drop, low stock)")
	fmt.Println()
	fmt.Println("  INVENTORY")
	fmt.Println("  /inventory                       Current stock per product (latest count wins)")
	fmt.Println("  /restock                         Record new stock counts (interactive)")
	fmt.Println()
	fmt.Println("  NOTIFICATION RULES")
	fmt.Println("  /rules                           List low-stock rules")
	fmt.Println("  /watch <threshold> <product>     Alert when product stock drops to threshold")
	fmt.Println("  /unwatch <rule-id>               Delete a rule")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println()
	fmt.Println("  AGENT MODE  (no / prefix)")
	fmt.Println("  Type any question in natural language.")
	fmt.Println("  Example: \"how were my sales yesterday?\"")
	fmt.Println(strings.Repeat("=", 62))
}
