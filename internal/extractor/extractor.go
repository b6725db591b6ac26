package extractor

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"

	"tidy/internal/exifdata"
	"tidy/internal/geocode"
	"tidy/internal/identify"
	"tidy/internal/logging"
	"tidy/internal/mediatypes"
	"tidy/internal/startup"
	"tidy/internal/store"
	"tidy/internal/taskqueue"
	"tidy/internal/timestamp"
)

// Extractor resolves per-item metadata: capture time, dimensions, camera
// parameters and geolocation.
type Extractor struct {
	store *store.Store
	cfg   *startup.Config

	// geo may be nil when no geodata database is available; items then
	// keep their raw coordinates with no resolved location.
	geo geocode.Reverser

	// identify is the image-identification collaborator, injectable for
	// tests.
	identify func(path string) (*identify.Dimensions, error)
}

// New creates an Extractor. geo may be nil.
func New(s *store.Store, cfg *startup.Config, geo geocode.Reverser) *Extractor {
	return &Extractor{
		store:    s,
		cfg:      cfg,
		geo:      geo,
		identify: identify.File,
	}
}

// Run extracts metadata for items that have none yet, or, when fromID is
// positive, for every item above that identifier. Extraction runs
// serially: the JPEG path is parse-bound and the fallback path leans on
// image decoding, and neither benefits from saturating the disk. Per-item
// failures are logged and leave the row as it was; the next run picks
// those items up again.
func (e *Extractor) Run(ctx context.Context, fromID int64) error {
	var items []store.Item
	var err error
	if fromID > 0 {
		items, err = e.store.ItemsFromID(ctx, fromID)
	} else {
		items, err = e.store.ItemsMissingMetadata(ctx)
	}
	if err != nil {
		return fmt.Errorf("selecting items: %w", err)
	}

	logging.Info("extracting metadata for %d items", len(items))

	taskqueue.Run("extract", items, 1,
		func(item store.Item) string {
			return fmt.Sprintf("item %d (%s/%s)", item.ID, item.Path, item.Filename)
		},
		func(item store.Item) error { return e.processItem(ctx, item) })

	return nil
}

func (e *Extractor) processItem(ctx context.Context, item store.Item) error {
	path := filepath.Join(e.cfg.OriginalsDir(), filepath.FromSlash(item.Path), item.Filename)

	var meta store.Metadata
	var err error
	if mediatypes.IsJPEG(item.MimeType.String) {
		meta, err = e.exifExtract(ctx, path)
	} else {
		meta, err = e.basicExtract(path)
	}
	if err != nil {
		return err
	}

	return e.store.UpdateItemMetadata(ctx, item.ID, meta)
}

// exifExtract resolves metadata from a JPEG's EXIF block, falling back to
// basic extraction when the block is absent or unreadable.
func (e *Extractor) exifExtract(ctx context.Context, path string) (store.Metadata, error) {
	data, err := exifdata.Decode(path)
	if err != nil {
		logging.Debug("%s: %v, falling back to basic extraction", path, err)
		return e.basicExtract(path)
	}
	return e.metadataFromEXIF(ctx, path, data)
}

// metadataFromEXIF maps a decoded EXIF bag onto item metadata. Every
// camera field is individually optional and stays NULL when absent.
func (e *Extractor) metadataFromEXIF(ctx context.Context, path string, data *exifdata.Data) (store.Metadata, error) {
	var m store.Metadata

	ts, err := timestamp.FromEXIF(data.DateTime, path)
	if err != nil {
		return m, fmt.Errorf("resolving timestamp: %w", err)
	}
	m.Timestamp = sql.NullInt64{Int64: ts, Valid: true}

	width, height := data.Width, data.Height
	if width == 0 || height == 0 {
		dims, err := e.identify(path)
		if err != nil {
			return m, fmt.Errorf("identifying dimensions: %w", err)
		}
		width, height = dims.Width, dims.Height
	}
	// Orientation codes 5-8 mean the camera was rotated 90 or 270
	// degrees; the recorded dimensions are the sensor's, not the image's.
	if data.Orientation > 4 {
		width, height = height, width
	}
	m.Width = sql.NullInt64{Int64: int64(width), Valid: true}
	m.Height = sql.NullInt64{Int64: int64(height), Valid: true}

	if data.Make != "" {
		m.Make = sql.NullString{String: data.Make, Valid: true}
	}
	if data.Model != "" {
		m.Model = sql.NullString{String: data.Model, Valid: true}
	}
	if data.ExposureSeconds > 0 {
		m.Exposure = sql.NullInt64{Int64: int64(math.Round(1 / data.ExposureSeconds)), Valid: true}
	}
	if data.FNumber > 0 {
		m.FNumber = sql.NullFloat64{Float64: data.FNumber, Valid: true}
	}
	if data.ISO > 0 {
		m.ISO = sql.NullInt64{Int64: int64(data.ISO), Valid: true}
	}
	if data.FocalLength > 0 {
		m.FocalLength = sql.NullFloat64{Float64: data.FocalLength, Valid: true}
	}

	// Zero-valued coordinates mean "no fix recorded", not a point off the
	// coast of Ghana; they never trigger a geocode call.
	if data.HasGPS && data.Latitude != 0 && data.Longitude != 0 {
		m.Latitude = sql.NullFloat64{Float64: data.Latitude, Valid: true}
		m.Longitude = sql.NullFloat64{Float64: data.Longitude, Valid: true}

		if e.geo != nil {
			loc, err := e.geo.Reverse(ctx, data.Latitude, data.Longitude)
			if err != nil {
				// Never fatal to the item; it keeps coordinates only.
				logging.Error("%s: %v", path, err)
			} else {
				m.LocationID = sql.NullInt64{Int64: loc.ID, Valid: true}
				m.LocationName = sql.NullString{String: loc.Formatted, Valid: true}
			}
		}
	}

	return m, nil
}

// basicExtract is the fallback path for non-JPEG formats and unreadable
// EXIF blocks: capture time from the file mtime, dimensions from the
// identification collaborator.
func (e *Extractor) basicExtract(path string) (store.Metadata, error) {
	var m store.Metadata

	ts, err := timestamp.FromFile(path)
	if err != nil {
		return m, fmt.Errorf("reading mtime: %w", err)
	}
	m.Timestamp = sql.NullInt64{Int64: ts, Valid: true}

	dims, err := e.identify(path)
	if err != nil {
		return m, fmt.Errorf("identifying dimensions: %w", err)
	}
	m.Width = sql.NullInt64{Int64: int64(dims.Width), Valid: true}
	m.Height = sql.NullInt64{Int64: int64(dims.Height), Valid: true}

	return m, nil
}
