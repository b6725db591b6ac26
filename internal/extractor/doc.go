/*
Package extractor derives per-item metadata after indexing.

JPEG-family items go through EXIF extraction: capture time from the
embedded date string (interpreted as UTC), dimensions from the EXIF
fields with the identification collaborator as fallback and an
orientation-aware width/height swap, camera parameters field by field,
and a reverse-geocode lookup gated on a non-zero coordinate pair. Every
other supported format gets basic extraction: file mtime plus probed
dimensions.

Failures are per item. A corrupt file or crashed collaborator is logged
and skipped; whatever fields were already resolved stay put until a later
run succeeds.
*/
package extractor
