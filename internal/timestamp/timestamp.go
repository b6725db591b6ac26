// Package timestamp resolves a file's capture time. Embedded EXIF time is
// preferred; the file's mtime is the fallback. The importer and the
// metadata extractor both resolve through this package, so album/year
// placement and the displayed item date can never disagree.
package timestamp

import (
	"fmt"
	"os"
	"time"

	"tidy/internal/exifdata"
)

// exifLayout is how cameras store capture time: local time, no timezone.
const exifLayout = "2006:01:02 15:04:05"

// ParseEXIF parses a raw EXIF date/time string as UTC and returns epoch
// seconds. The string carries no timezone; interpreting it as UTC keeps
// the stored value independent of the host timezone.
func ParseEXIF(value string) (int64, error) {
	t, err := time.ParseInLocation(exifLayout, value, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parsing exif timestamp %q: %w", value, err)
	}
	return t.Unix(), nil
}

// FromFile returns the file's last-modified time as epoch seconds. The
// mtime is usually the capture time for files copied straight off a
// camera; ctime changes on permission changes, so it is not used.
func FromFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}

// FromEXIF resolves a timestamp from an already-decoded EXIF string,
// falling back to the file's mtime when the string is absent or
// unparsable.
func FromEXIF(value, path string) (int64, error) {
	if value != "" {
		if ts, err := ParseEXIF(value); err == nil {
			return ts, nil
		}
	}
	return FromFile(path)
}

// Resolve returns the capture time for a file: EXIF first, mtime as the
// fallback for non-JPEG files and files with no usable EXIF block.
func Resolve(path string) (int64, error) {
	data, err := exifdata.Decode(path)
	if err != nil {
		// Probably not a JPEG file
		return FromFile(path)
	}
	return FromEXIF(data.DateTime, path)
}
