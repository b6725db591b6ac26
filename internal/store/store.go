package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"tidy/internal/logging"
	"tidy/internal/metrics"
	"tidy/internal/sqlutil"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Store manages the albums, items, tags and taggings tables. All mutation
// goes through single-row find-or-create and update statements, so the
// unique constraints in the schema are what make pipeline re-runs
// idempotent.
type Store struct {
	db *sqlutil.DB
	mu sync.RWMutex
}

// Open opens (and creates, if needed) the library database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sqlutil.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logging.Debug("store ready at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		album_id INTEGER,
		path TEXT NOT NULL,
		filename TEXT NOT NULL,
		mime_type TEXT,
		thumbnail_filename TEXT,
		make TEXT,
		model TEXT,
		exposure INTEGER,
		f_number REAL,
		iso INTEGER,
		focal_length REAL,
		width INTEGER,
		height INTEGER,
		timestamp INTEGER,
		latitude REAL,
		longitude REAL,
		location_id INTEGER,
		location_name TEXT,
		UNIQUE(path, filename)
	);

	CREATE INDEX IF NOT EXISTS idx_items_album_id ON items(album_id);
	CREATE INDEX IF NOT EXISTS idx_items_timestamp ON items(timestamp);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		item_count INTEGER,
		oldest_timestamp INTEGER,
		newest_timestamp INTEGER,
		UNIQUE(type, name)
	);

	CREATE TABLE IF NOT EXISTS taggings (
		item_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (item_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_taggings_tag_id ON taggings(tag_id);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// observeQuery records query metrics. Call the returned function with the
// query's error when it completes.
func observeQuery(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
		metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
