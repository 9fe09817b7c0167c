// Command migrate applies or rolls back the embedded database migrations.
//
// Usage: migrate [up|down]  (default up)
package main

import (
	"errors"
	"log"
	"os"

	"club-control-plane/internal/config"
	"club-control-plane/internal/db/migrate"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("migrate: no change")
			return
		}
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrate: %s complete", direction)
}
