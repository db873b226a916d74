package main

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/pageza/feastly/backend/config"
	"github.com/pageza/feastly/backend/internal/database"
)

const (
	maxAttempts  = 30
	attemptDelay = 2 * time.Second
)

// Runs the schema migrations once Postgres accepts connections. Meant to be
// invoked as an init container or a compose step before the API starts.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := waitForPostgres(cfg.DSN()); err != nil {
		log.Fatalf("Database never became ready: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("migrations applied")
}

func waitForPostgres(dsn string) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		conn, err := sql.Open("postgres", dsn)
		if err == nil {
			err = conn.Ping()
			conn.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		log.Printf("waiting for database (%d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(attemptDelay)
	}
	return lastErr
}
