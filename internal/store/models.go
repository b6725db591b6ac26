package store

import "database/sql"

// Album is one source-directory group of items. Rows are created by the
// importer/indexer and never deleted by the pipeline.
type Album struct {
	ID   int64
	Name string
}

// Item is one managed file plus its derived metadata. Path and Filename
// are relative to the Originals root; the (path, filename) pair is unique.
// Metadata and thumbnail fields stay NULL until the corresponding stage
// fills them in.
type Item struct {
	ID                int64
	AlbumID           sql.NullInt64
	Path              string
	Filename          string
	MimeType          sql.NullString
	Timestamp         sql.NullInt64
	Width             sql.NullInt64
	Height            sql.NullInt64
	Make              sql.NullString
	Model             sql.NullString
	Exposure          sql.NullInt64
	FNumber           sql.NullFloat64
	ISO               sql.NullInt64
	FocalLength       sql.NullFloat64
	Latitude          sql.NullFloat64
	Longitude         sql.NullFloat64
	LocationID        sql.NullInt64
	LocationName      sql.NullString
	ThumbnailFilename sql.NullString
}

// Tag types. The album tag is implicit (one per album); location and
// country tags are derived from geocoded items.
const (
	TagTypeAlbum    = "album"
	TagTypeLocation = "location"
	TagTypeCountry  = "country"
)

// Tag is a named classification. The (type, name) pair is unique. The
// stats columns are a cached snapshot, recomputed by RefreshTagStats; they
// may go stale between stats passes.
type Tag struct {
	ID              int64
	Type            string
	Name            string
	ItemCount       sql.NullInt64
	OldestTimestamp sql.NullInt64
	NewestTimestamp sql.NullInt64
}

// Metadata carries the fields the extractor resolves for one item. Any
// field may be NULL; partial metadata is written as-is.
type Metadata struct {
	Timestamp    sql.NullInt64
	Width        sql.NullInt64
	Height       sql.NullInt64
	Make         sql.NullString
	Model        sql.NullString
	Exposure     sql.NullInt64
	FNumber      sql.NullFloat64
	ISO          sql.NullInt64
	FocalLength  sql.NullFloat64
	Latitude     sql.NullFloat64
	Longitude    sql.NullFloat64
	LocationID   sql.NullInt64
	LocationName sql.NullString
}
