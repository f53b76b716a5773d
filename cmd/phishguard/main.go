package main

import (
	"log"

	"github.com/phishblock/phishguard/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ phishguard failed to start: %v", err)
	}
}
