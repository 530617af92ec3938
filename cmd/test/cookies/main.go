package main

import (
	"fmt"
	"log"
	"os"

	"go-jobsheet-automation/internal/browser"
)

func main() {
	fmt.Println("🍪 Testing cookie loading...")

	path := ".cookies/cookies-justjoinit.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cookies, err := browser.LoadCookies(path)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	fmt.Printf("✅ Loaded %d cookies from %s\n", len(cookies), path)

	//Print first cookie as example
	if len(cookies) > 0 {
		c := cookies[0]
		fmt.Printf("\nExample cookie:\n")
		fmt.Printf("Name: %s\n", c.Name)
		fmt.Printf("Domain: %s\n", *c.Domain)
		fmt.Printf("Secure: %t\n", c.Secure != nil && *c.Secure)
	}
}
