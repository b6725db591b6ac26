// Package tagger maintains the tag index over items. Albums get one
// implicit album tag each; geocoded items additionally get location and
// country tags keyed by the geocoder's identifiers. A second pass caches
// per-tag aggregate stats (item count, oldest/newest capture time) on the
// tag rows as a snapshot for the browsing layer.
package tagger
