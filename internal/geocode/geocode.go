package geocode

import (
	"context"
	"database/sql"
	"fmt"

	"tidy/internal/metrics"
	"tidy/internal/sqlutil"
)

// Country identifies the country a location belongs to.
type Country struct {
	ID   string
	Name string
}

// Location is one resolved place record.
type Location struct {
	ID        int64
	Name      string
	Formatted string
	Country   Country
}

// Reverser maps a coordinate pair to the nearest known location.
type Reverser interface {
	Reverse(ctx context.Context, lat, lng float64) (*Location, error)
}

// Finder looks a location up by its identifier.
type Finder interface {
	Find(ctx context.Context, id int64) (*Location, error)
}

// reverseRadius bounds the candidate search around the query point, in
// degrees. Roughly 50km at the equator; coordinates further than that from
// any known place fail to resolve.
const reverseRadius = 0.5

// DB is an offline geocoder backed by a places database: a sqlite file
// with `locations(id, name, latitude, longitude, country_id)` and
// `countries(id, name)` tables, typically built from a geonames dump.
type DB struct {
	db *sqlutil.DB
}

// Open opens the geodata database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlutil.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening geodata: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (g *DB) Close() error {
	return g.db.Close()
}

// Reverse returns the nearest location to (lat, lng), or an error when no
// place lies within the search radius. Distance ordering uses the squared
// degree delta, which is accurate enough for nearest-place selection at
// this radius.
func (g *DB) Reverse(ctx context.Context, lat, lng float64) (*Location, error) {
	loc := &Location{}
	err := g.db.QueryRowContext(ctx, `
		SELECT l.id, l.name, c.id, c.name
		FROM locations l
		JOIN countries c ON c.id = l.country_id
		WHERE l.latitude BETWEEN ? AND ? AND l.longitude BETWEEN ? AND ?
		ORDER BY (l.latitude - ?) * (l.latitude - ?) + (l.longitude - ?) * (l.longitude - ?)
		LIMIT 1
	`, lat-reverseRadius, lat+reverseRadius, lng-reverseRadius, lng+reverseRadius,
		lat, lat, lng, lng,
	).Scan(&loc.ID, &loc.Name, &loc.Country.ID, &loc.Country.Name)
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("miss").Inc()
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no location near (%f, %f)", lat, lng)
		}
		return nil, fmt.Errorf("reverse geocoding (%f, %f): %w", lat, lng, err)
	}

	metrics.GeocodeLookups.WithLabelValues("hit").Inc()
	loc.Formatted = fmt.Sprintf("%s, %s", loc.Name, loc.Country.Name)
	return loc, nil
}

// Find returns the location with the given identifier.
func (g *DB) Find(ctx context.Context, id int64) (*Location, error) {
	loc := &Location{}
	err := g.db.QueryRowContext(ctx, `
		SELECT l.id, l.name, c.id, c.name
		FROM locations l
		JOIN countries c ON c.id = l.country_id
		WHERE l.id = ?
	`, id).Scan(&loc.ID, &loc.Name, &loc.Country.ID, &loc.Country.Name)
	if err != nil {
		return nil, fmt.Errorf("finding location %d: %w", id, err)
	}
	loc.Formatted = fmt.Sprintf("%s, %s", loc.Name, loc.Country.Name)
	return loc, nil
}
