// Package sqlutil holds the shared sqlite connection setup used by the
// library store and the offline geocoder.
package sqlutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"tidy/internal/logging"
)

const pingTimeout = 5 * time.Second

// DB wraps sql.DB so callers share one connection configuration.
type DB struct {
	*sql.DB
}

// Open opens a sqlite database with WAL journaling and a busy timeout,
// which keeps concurrent workers from hitting "database is locked" under
// the bounded concurrency the pipeline uses.
func Open(ctx context.Context, path string) (*DB, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	return &DB{db}, nil
}
