// Package geocode is the offline reverse-geocoding collaborator: it maps
// a coordinate pair to the nearest known place in a local sqlite places
// database, with no network dependency. Lookups that fail are reported as
// errors and never treated as fatal by callers; an item simply keeps a
// null location until a later run.
package geocode
