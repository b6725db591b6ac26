package store

import (
	"context"
	"fmt"
)

const itemColumns = `id, album_id, path, filename, mime_type, thumbnail_filename,
	make, model, exposure, f_number, iso, focal_length,
	width, height, timestamp, latitude, longitude, location_id, location_name`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner, item *Item) error {
	return row.Scan(
		&item.ID, &item.AlbumID, &item.Path, &item.Filename, &item.MimeType,
		&item.ThumbnailFilename, &item.Make, &item.Model, &item.Exposure,
		&item.FNumber, &item.ISO, &item.FocalLength, &item.Width, &item.Height,
		&item.Timestamp, &item.Latitude, &item.Longitude, &item.LocationID,
		&item.LocationName,
	)
}

func (s *Store) collectItems(ctx context.Context, operation, query string, args ...interface{}) ([]Item, error) {
	done := observeQuery(operation)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := scanItem(rows, &item); err != nil {
			done(err)
			return nil, err
		}
		items = append(items, item)
	}
	err = rows.Err()
	done(err)
	return items, err
}

// FindOrCreateItem returns the item identified by the (path, filename)
// pair, creating it if absent, and records its MIME type and album. The
// unique constraint makes repeated indexer runs no-ops for existing rows.
func (s *Store) FindOrCreateItem(ctx context.Context, albumID int64, path, filename, mimeType string) (*Item, error) {
	done := observeQuery("find_or_create_item")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO items (album_id, path, filename) VALUES (?, ?, ?)",
		albumID, path, filename,
	)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("creating item %s/%s: %w", path, filename, err)
	}

	// Classification may change between runs; keep mime_type and album
	// current either way.
	_, err = s.db.ExecContext(ctx,
		"UPDATE items SET mime_type = ?, album_id = ? WHERE path = ? AND filename = ?",
		mimeType, albumID, path, filename,
	)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("updating item %s/%s: %w", path, filename, err)
	}

	item := &Item{}
	err = scanItem(s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE path = ? AND filename = ?",
		path, filename,
	), item)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetching item %s/%s: %w", path, filename, err)
	}
	return item, nil
}

// FindItem returns the item with the given ID, or sql.ErrNoRows.
func (s *Store) FindItem(ctx context.Context, id int64) (*Item, error) {
	done := observeQuery("find_item")

	s.mu.RLock()
	defer s.mu.RUnlock()

	item := &Item{}
	err := scanItem(s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id), item)
	done(err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemMetadata writes the extractor's resolved fields onto an item.
// NULL fields are written as NULL; the extractor only calls this when it
// has a result to persist, so a failed extraction leaves the row untouched.
func (s *Store) UpdateItemMetadata(ctx context.Context, id int64, m Metadata) error {
	done := observeQuery("update_item_metadata")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET
			timestamp = ?, width = ?, height = ?, make = ?, model = ?,
			exposure = ?, f_number = ?, iso = ?, focal_length = ?,
			latitude = ?, longitude = ?, location_id = ?, location_name = ?
		WHERE id = ?
	`,
		m.Timestamp, m.Width, m.Height, m.Make, m.Model,
		m.Exposure, m.FNumber, m.ISO, m.FocalLength,
		m.Latitude, m.Longitude, m.LocationID, m.LocationName,
		id,
	)
	done(err)
	return err
}

// SetThumbnail records the generated thumbnail filename for an item.
func (s *Store) SetThumbnail(ctx context.Context, id int64, filename string) error {
	done := observeQuery("set_thumbnail")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		"UPDATE items SET thumbnail_filename = ? WHERE id = ?", filename, id)
	done(err)
	return err
}

// ItemsMissingMetadata returns items the extractor has not yet resolved a
// capture timestamp for.
func (s *Store) ItemsMissingMetadata(ctx context.Context) ([]Item, error) {
	return s.collectItems(ctx, "items_missing_metadata",
		"SELECT "+itemColumns+" FROM items WHERE timestamp IS NULL ORDER BY id")
}

// ItemsFromID returns items above an identifier threshold, for incremental
// extraction runs.
func (s *Store) ItemsFromID(ctx context.Context, fromID int64) ([]Item, error) {
	return s.collectItems(ctx, "items_from_id",
		"SELECT "+itemColumns+" FROM items WHERE id > ? ORDER BY id", fromID)
}

// ItemsMissingThumbnail returns an album's items with no thumbnail
// reference yet.
func (s *Store) ItemsMissingThumbnail(ctx context.Context, albumID int64) ([]Item, error) {
	return s.collectItems(ctx, "items_missing_thumbnail",
		"SELECT "+itemColumns+" FROM items WHERE album_id = ? AND thumbnail_filename IS NULL ORDER BY id",
		albumID)
}

// TaggedItem is an item joined with its album name, the input to tag
// derivation.
type TaggedItem struct {
	Item
	AlbumName string
}

// AllItemsWithAlbum returns every item with its album name.
func (s *Store) AllItemsWithAlbum(ctx context.Context) ([]TaggedItem, error) {
	done := observeQuery("all_items_with_album")

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.album_id, i.path, i.filename, i.mime_type, i.thumbnail_filename,
			i.make, i.model, i.exposure, i.f_number, i.iso, i.focal_length,
			i.width, i.height, i.timestamp, i.latitude, i.longitude, i.location_id, i.location_name,
			a.name
		FROM items i
		JOIN albums a ON a.id = i.album_id
		ORDER BY i.id
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var items []TaggedItem
	for rows.Next() {
		var t TaggedItem
		err := rows.Scan(
			&t.ID, &t.AlbumID, &t.Path, &t.Filename, &t.MimeType,
			&t.ThumbnailFilename, &t.Make, &t.Model, &t.Exposure,
			&t.FNumber, &t.ISO, &t.FocalLength, &t.Width, &t.Height,
			&t.Timestamp, &t.Latitude, &t.Longitude, &t.LocationID,
			&t.LocationName, &t.AlbumName,
		)
		if err != nil {
			done(err)
			return nil, err
		}
		items = append(items, t)
	}
	err = rows.Err()
	done(err)
	return items, err
}

// ListItems returns one page of items, oldest capture first.
func (s *Store) ListItems(ctx context.Context, page, perPage int) ([]Item, error) {
	return s.collectItems(ctx, "list_items",
		"SELECT "+itemColumns+" FROM items ORDER BY timestamp, id LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
}

// ListAlbumItems returns one page of an album's items, oldest capture
// first.
func (s *Store) ListAlbumItems(ctx context.Context, albumID int64, page, perPage int) ([]Item, error) {
	return s.collectItems(ctx, "list_album_items",
		"SELECT "+itemColumns+" FROM items WHERE album_id = ? ORDER BY timestamp, id LIMIT ? OFFSET ?",
		albumID, perPage, (page-1)*perPage)
}
