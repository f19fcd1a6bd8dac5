// Package sqlite opens embedded SQLite database handles for fluentdb using
// the cgo-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/logger"
)

// MemoryDatabase is the in-memory database path.
const MemoryDatabase = ":memory:"

// Open opens a SQLite handle for cfg and verifies it with a ping. An empty
// database path defaults to an in-memory instance; a directory implied by a
// file path is created if absent.
func Open(cfg *config.DatabaseConfig, log logger.Logger) (*sql.DB, error) {
	path := cfg.Database
	if path == "" {
		path = MemoryDatabase
	}

	if path != MemoryDatabase {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Each pooled connection would otherwise see its own private in-memory
	// database; a single connection keeps one shared instance and also
	// serializes writes, which sqlite requires.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close SQLite database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Info().
		Str("database", path).
		Msg("Connected to SQLite database")

	return db, nil
}
