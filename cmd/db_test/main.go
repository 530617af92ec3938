package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-jobsheet-automation/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		godotenv.Load("../../.env") // Fallback
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, dbURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v\n(Check your connection string, password, and Ensure you have internet access)", err)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ job_offers table is ready")

	urls, err := repo.KnownURLs(ctx)
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	fmt.Printf("📦 Stored offers: %d\n", len(urls))
	for i, u := range urls {
		if i == 5 {
			fmt.Printf("   ... and %d more\n", len(urls)-i)
			break
		}
		fmt.Printf("   %s\n", u)
	}
}
