package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindOrCreateAlbum returns the album named name, creating it if absent.
// The unique constraint on albums.name makes concurrent and repeated calls
// converge on one row.
func (s *Store) FindOrCreateAlbum(ctx context.Context, name string) (*Album, error) {
	done := observeQuery("find_or_create_album")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("album name cannot be empty")
		done(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO albums (name) VALUES (?)", name); err != nil {
		done(err)
		return nil, fmt.Errorf("creating album %q: %w", name, err)
	}

	album := &Album{}
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM albums WHERE name = ?", name).
		Scan(&album.ID, &album.Name)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetching album %q: %w", name, err)
	}
	return album, nil
}

// AllAlbums returns every album ordered by name.
func (s *Store) AllAlbums(ctx context.Context) ([]Album, error) {
	done := observeQuery("all_albums")

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM albums ORDER BY name")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var a Album
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			done(err)
			return nil, err
		}
		albums = append(albums, a)
	}
	err = rows.Err()
	done(err)
	return albums, err
}

// AlbumSummary is an album joined with its cached album-tag stats, used by
// the browsing API.
type AlbumSummary struct {
	Album
	ItemCount       sql.NullInt64
	OldestTimestamp sql.NullInt64
	NewestTimestamp sql.NullInt64
}

// ListAlbums returns one page of albums with cached stats, newest first.
func (s *Store) ListAlbums(ctx context.Context, page, perPage int) ([]AlbumSummary, error) {
	done := observeQuery("list_albums")

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, t.item_count, t.oldest_timestamp, t.newest_timestamp
		FROM albums a
		LEFT JOIN tags t ON t.type = ? AND t.name = a.name
		ORDER BY t.newest_timestamp DESC, a.name
		LIMIT ? OFFSET ?
	`, TagTypeAlbum, perPage, (page-1)*perPage)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var albums []AlbumSummary
	for rows.Next() {
		var a AlbumSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.ItemCount, &a.OldestTimestamp, &a.NewestTimestamp); err != nil {
			done(err)
			return nil, err
		}
		albums = append(albums, a)
	}
	err = rows.Err()
	done(err)
	return albums, err
}

// FindAlbum returns the album with the given ID, or sql.ErrNoRows.
func (s *Store) FindAlbum(ctx context.Context, id int64) (*AlbumSummary, error) {
	done := observeQuery("find_album")

	s.mu.RLock()
	defer s.mu.RUnlock()

	a := &AlbumSummary{}
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, t.item_count, t.oldest_timestamp, t.newest_timestamp
		FROM albums a
		LEFT JOIN tags t ON t.type = ? AND t.name = a.name
		WHERE a.id = ?
	`, TagTypeAlbum, id).Scan(&a.ID, &a.Name, &a.ItemCount, &a.OldestTimestamp, &a.NewestTimestamp)
	done(err)
	if err != nil {
		return nil, err
	}
	return a, nil
}
