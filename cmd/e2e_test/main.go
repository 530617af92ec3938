package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-jobsheet-automation/internal/config"
	"go-jobsheet-automation/internal/runner"
	"go-jobsheet-automation/internal/scraper"
	"go-jobsheet-automation/internal/store"
	"go-jobsheet-automation/internal/telegram"
)

// mockCollector stands in for a browser-driven site.
type mockCollector struct{}

func (mockCollector) Name() string { return "E2E" }

func (mockCollector) CollectNewOffers(context.Context, []string) ([]scraper.JobOffer, error) {
	return []scraper.JobOffer{{
		Employer:     "ACME Test sp. z o.o.",
		Position:     "Python Test Engineer (e2e)",
		Salary:       "15 000 - 20 000 PLN",
		Requirements: "Python\nPytest\nSelenium",
		URL:          fmt.Sprintf("https://justjoin.it/job-offer/e2e-%d", time.Now().Unix()),
	}}, nil
}

// Pushes one mock offer through the configured store and Telegram, without
// a browser.
func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.TelegramEnabled() {
		log.Fatal("Missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Store connection failed: %v", err)
	}
	defer st.Close()

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("Failed to initialize telegram bot: %v", err)
	}

	dryRun := len(os.Args) > 1 && os.Args[1] == "--dry-run"
	report, err := runner.New(st, []runner.Collector{mockCollector{}}, runner.Options{
		Notifier: bot,
		DryRun:   dryRun,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	if err := report.Err(); err != nil {
		log.Fatalf("Run finished with errors: %v", err)
	}

	log.Printf("✅ Sent %d mock offer(s) to %s and Telegram. Check the chat!", report.NewOffers(), cfg.Store)
}
