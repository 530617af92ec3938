package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/scraper"
	"go-jobsheet-automation/internal/scraper/justjoinit"
	"go-jobsheet-automation/internal/scraper/pracuj"
)

// Opens a board's home page, accepts its cookie banner and saves a
// screenshot. Usage: browser [pracuj|justjoinit]
func main() {
	fmt.Println("🌐 Testing Browser Manager...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var site scraper.Site = justjoinit.NewJustJoinItScraper(scraper.SiteOptions{})
	if len(os.Args) > 1 && os.Args[1] == "pracuj" {
		site = pracuj.NewPracujScraper(scraper.SiteOptions{})
	}

	pm, err := browser.NewPlaywright(ctx, browser.Options{Headless: false, PageLoadTimeout: 30 * time.Second})
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()
	fmt.Println("✅ Playwright started")

	session, err := pm.NewSession(nil)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer session.Close()

	page, err := session.NewPage(ctx)
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}
	defer page.Close()

	fmt.Printf("🔍 Navigating to %s...\n", site.HomeURL())
	if err := page.Goto(ctx, site.HomeURL()); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	if err := site.AcceptCookies(ctx, page); err != nil {
		fmt.Printf("⚠️ Cookie banner not accepted: %v\n", err)
	} else {
		fmt.Println("🍪 Cookie banner accepted")
	}

	shot := fmt.Sprintf("%s-test.png", site.Name())
	if err := page.Screenshot(shot); err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	} else {
		fmt.Printf("📸 Screenshot saved: %s\n", shot)
	}
	fmt.Println("✨ Test complete!")
}
