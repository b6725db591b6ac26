package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FindOrCreateTag returns the tag with the given type and name, creating
// it if absent. The unique constraint on (type, name) makes concurrent and
// repeated calls converge on one row.
func (s *Store) FindOrCreateTag(ctx context.Context, tagType, name string) (*Tag, error) {
	done := observeQuery("find_or_create_tag")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("tag name cannot be empty")
		done(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO tags (type, name) VALUES (?, ?)", tagType, name); err != nil {
		done(err)
		return nil, fmt.Errorf("creating tag %s/%s: %w", tagType, name, err)
	}

	tag := &Tag{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, name, item_count, oldest_timestamp, newest_timestamp
		FROM tags WHERE type = ? AND name = ?
	`, tagType, name).Scan(&tag.ID, &tag.Type, &tag.Name, &tag.ItemCount,
		&tag.OldestTimestamp, &tag.NewestTimestamp)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetching tag %s/%s: %w", tagType, name, err)
	}
	return tag, nil
}

// FindOrCreateTagging associates an item with a tag. The primary key on
// (item_id, tag_id) keeps the association unique across reruns.
func (s *Store) FindOrCreateTagging(ctx context.Context, itemID, tagID int64) error {
	done := observeQuery("find_or_create_tagging")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO taggings (item_id, tag_id) VALUES (?, ?)", itemID, tagID)
	done(err)
	return err
}

// AllTags returns every tag.
func (s *Store) AllTags(ctx context.Context) ([]Tag, error) {
	done := observeQuery("all_tags")

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, name, item_count, oldest_timestamp, newest_timestamp
		FROM tags ORDER BY type, name
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Type, &t.Name, &t.ItemCount,
			&t.OldestTimestamp, &t.NewestTimestamp); err != nil {
			done(err)
			return nil, err
		}
		tags = append(tags, t)
	}
	err = rows.Err()
	done(err)
	return tags, err
}

// RefreshTagStats recomputes a tag's cached item count and oldest/newest
// item timestamps from its current associations. The result is a snapshot:
// it reflects the taggings at computation time and goes stale until the
// next stats pass.
func (s *Store) RefreshTagStats(ctx context.Context, tagID int64) error {
	done := observeQuery("refresh_tag_stats")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		UPDATE tags SET
			item_count = (SELECT COUNT(*) FROM taggings WHERE tag_id = tags.id),
			oldest_timestamp = (
				SELECT MIN(i.timestamp) FROM items i
				JOIN taggings tg ON tg.item_id = i.id
				WHERE tg.tag_id = tags.id
			),
			newest_timestamp = (
				SELECT MAX(i.timestamp) FROM items i
				JOIN taggings tg ON tg.item_id = i.id
				WHERE tg.tag_id = tags.id
			)
		WHERE id = ?
	`, tagID)
	done(err)
	return err
}
