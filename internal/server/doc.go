// Package server is the read-only browsing API over the library: paginated
// album and item listings with their derived metadata, plus thumbnail and
// original file serving. It consumes the data model the pipeline produces
// and never writes to it.
package server
