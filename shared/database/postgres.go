// Package database opens the Postgres pools shared by the ledger services.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres through lib/pq, retrying the ping while the
// database comes up, and tunes the pool.
func Open(dsn string, maxRetries int, retryInterval time.Duration) (*sql.DB, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for i := 0; i < maxRetries; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i < maxRetries-1 {
			slog.Warn("database not ready, retrying", "attempt", i+1, "error", err)
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
