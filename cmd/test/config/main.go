package main

import (
	"fmt"
	"log"

	"go-jobsheet-automation/internal/config"
)

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Keywords: %s\n", cfg.SearchKeywords)
	fmt.Printf("   Location: %s\n", cfg.SearchLocation)
	fmt.Printf("   Sites: %v\n", cfg.Sites)
	fmt.Printf("   Max open pages: %d, duplicate limit: %d\n", cfg.MaxOpenPages, cfg.DuplicateLimit)
	fmt.Printf("   Store: %s (%s)\n", cfg.Store, cfg.SpreadsheetName)
	fmt.Printf("   Telegram enabled: %t\n", cfg.TelegramEnabled())
	fmt.Printf("   Cookies Path: %s\n", cfg.CookiesPath)
}
