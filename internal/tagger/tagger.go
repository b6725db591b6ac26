package tagger

import (
	"context"
	"fmt"
	"strconv"

	"tidy/internal/geocode"
	"tidy/internal/logging"
	"tidy/internal/store"
	"tidy/internal/taskqueue"
)

// Tagger maintains the implicit album tag per album, derives location and
// country tags from geocoded items, and refreshes the cached per-tag
// stats.
type Tagger struct {
	store *store.Store

	// geo may be nil; location/country derivation is skipped then.
	geo geocode.Finder
}

// New creates a Tagger. geo may be nil.
func New(s *store.Store, geo geocode.Finder) *Tagger {
	return &Tagger{store: s, geo: geo}
}

// Run performs both passes: tag derivation, then the stats refresh.
func (t *Tagger) Run(ctx context.Context) error {
	if err := t.Derive(ctx); err != nil {
		return err
	}
	return t.RefreshStats(ctx)
}

// Derive ensures every item is associated with its album tag, and every
// geocoded item with location and country tags. All operations are
// find-or-create, so re-runs change nothing. Runs serially: each item may
// hit the geocoder.
func (t *Tagger) Derive(ctx context.Context) error {
	items, err := t.store.AllItemsWithAlbum(ctx)
	if err != nil {
		return fmt.Errorf("selecting items: %w", err)
	}

	logging.Info("computing tags for %d items", len(items))

	taskqueue.Run("tag derivation", items, 1,
		func(item store.TaggedItem) string { return taskqueue.ID(item.ID) },
		func(item store.TaggedItem) error { return t.tagItem(ctx, item) })

	return nil
}

func (t *Tagger) tagItem(ctx context.Context, item store.TaggedItem) error {
	if err := t.associate(ctx, item.ID, store.TagTypeAlbum, item.AlbumName); err != nil {
		return err
	}

	if !item.LocationID.Valid || t.geo == nil {
		return nil
	}

	// Location and country tags are keyed by the geocoder's identifiers,
	// not display names, so renamed places keep their tags.
	loc, err := t.geo.Find(ctx, item.LocationID.Int64)
	if err != nil {
		return err
	}

	if err := t.associate(ctx, item.ID, store.TagTypeLocation, strconv.FormatInt(loc.ID, 10)); err != nil {
		return err
	}
	if loc.Country.ID != "" {
		if err := t.associate(ctx, item.ID, store.TagTypeCountry, loc.Country.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tagger) associate(ctx context.Context, itemID int64, tagType, name string) error {
	tag, err := t.store.FindOrCreateTag(ctx, tagType, name)
	if err != nil {
		return err
	}
	return t.store.FindOrCreateTagging(ctx, itemID, tag.ID)
}

// RefreshStats recomputes every tag's cached item count and oldest/newest
// timestamps. Stats computation is cheap store-query work, so it runs at
// higher concurrency than derivation.
func (t *Tagger) RefreshStats(ctx context.Context) error {
	tags, err := t.store.AllTags(ctx)
	if err != nil {
		return fmt.Errorf("selecting tags: %w", err)
	}

	logging.Info("updating stats cache for %d tags", len(tags))

	taskqueue.Run("tag stats", tags, taskqueue.ForIO(0),
		func(tag store.Tag) string { return fmt.Sprintf("tag %d (%s/%s)", tag.ID, tag.Type, tag.Name) },
		func(tag store.Tag) error { return t.store.RefreshTagStats(ctx, tag.ID) })

	return nil
}
