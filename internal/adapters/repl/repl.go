package repl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"insight-engine/internal/app"
)

// Run starts the interactive REPL loop for one merchant.
// It reads commands from reader, dispatches slash commands deterministically,
// and routes natural language input through the AI assistant.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, merchantID string) {
	overview, err := svc.GetMerchantOverview(ctx, merchantID)
	if err != nil {
		log.Fatalf("Failed to load merchant: %v", err)
	}

	fmt.Println("Merchant Insight Assistant")
	fmt.Printf("Merchant: %s — %s (%s)\n",
		overview.Merchant.MerchantID, overview.Merchant.MerchantName, overview.Merchant.CityName)
	fmt.Println("Ask about your business in natural language, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "report", "rep":
			date := ""
			if len(args) > 0 {
				date = args[0]
			}
			window := 0
			if len(args) > 1 {
				parsed, err := strconv.Atoi(args[1])
				if err != nil {
					fmt.Printf("Invalid window-days: %s\n", args[1])
					return nil
				}
				window = parsed
			}
			result, err := svc.GetDailyReport(ctx, merchantID, date, window)
			if err != nil {
				return err
			}
			printReport(result)

		case "anomalies", "anom":
			result, err := svc.CheckAnomalies(ctx, merchantID)
			if err != nil {
				return err
			}
			printAlerts(result)

		case "inventory", "inv":
			result, err := svc.GetInventory(ctx, merchantID)
			if err != nil {
				return err
			}
			printInventory(result)

		case "restock":
			handleRestock(ctx, reader, svc, merchantID)

		case "rules":
			result, err := svc.ListRules(ctx, merchantID)
			if err != nil {
				return err
			}
			printRules(result)

		case "watch":
			if len(args) < 2 {
				fmt.Println("Usage: /watch <threshold> <product name>")
				return nil
			}
			threshold, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid threshold: %s\n", args[0])
				return nil
			}
			result, err := svc.CreateRule(ctx, app.CreateRuleRequest{
				MerchantID:  merchantID,
				ProductName: strings.Join(args[1:], " "),
				Threshold:   &threshold,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Rule %d created: alert when %s drops to %d or below.\n",
				result.Rule.ID, result.Rule.ProductName, result.Rule.Threshold)

		case "unwatch":
			if len(args) < 1 {
				fmt.Println("Usage: /unwatch <rule-id>")
				return nil
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Printf("Invalid rule id: %s\n", args[0])
				return nil
			}
			if err := svc.DeleteRule(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Rule %d deleted.\n", id)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil && input == "" {
			fmt.Println("Goodbye!")
			break
		}
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		// No slash prefix → route to AI assistant.
		fmt.Println("[AI] Processing...")
		result, chatErr := svc.Chat(ctx, merchantID, input)
		if chatErr != nil {
			fmt.Printf("Error: %v\n", chatErr)
			continue
		}
		printChat(result)
	}
}
