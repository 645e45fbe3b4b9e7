package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"insight-engine/internal/adapters/cli"
	"insight-engine/internal/adapters/repl"
	"insight-engine/internal/ai"
	"insight-engine/internal/app"
	"insight-engine/internal/core"
	"insight-engine/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := store.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	pg := store.NewPG(pool)
	reports := core.NewReportService(pg)
	anomalies := core.NewAnomalyService(pg)
	rules := core.NewRuleService(pg, pg)
	stock := core.NewStockService(pg, pg)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	svc := app.NewAppService(pg, reports, anomalies, rules, stock, agent)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}

	merchantID := os.Getenv("MERCHANT_ID")
	if merchantID == "" {
		merchantID = "1d4f2" // the demo merchant installed by cmd/seed
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), merchantID)
}
