package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "insight-engine/internal/adapters/web"
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
		log.Fatalf("database: %v", err)
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
