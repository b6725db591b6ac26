// Package exifdata reads the camera-embedded metadata block from a JPEG
// file and flattens it into a typed bag of optional fields. It is the
// metadata-parsing collaborator of the extraction pipeline; callers treat
// a decode failure as "fall back to basic extraction".
package exifdata

import (
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// Data is the flattened EXIF bag. Zero values mean the field was absent;
// camera firmware omits fields freely, so every consumer must tolerate
// that.
type Data struct {
	// DateTime is the raw capture-time string ("2006:01:02 15:04:05"),
	// camera-local with no timezone. Empty when absent.
	DateTime string

	// Width and Height are the pixel dimensions as recorded, before any
	// orientation correction. Zero when absent.
	Width  int
	Height int

	// Orientation is the raw EXIF orientation code (1-8). Values above 4
	// indicate a 90 or 270 degree rotation. Zero when absent.
	Orientation int

	Make  string
	Model string

	// ExposureSeconds is the exposure time in seconds. Zero when absent.
	ExposureSeconds float64
	FNumber         float64
	ISO             int
	FocalLength     float64

	// HasGPS reports whether a complete coordinate pair was present.
	HasGPS    bool
	Latitude  float64
	Longitude float64
}

// Decode reads the EXIF block from the file at path. It returns an error
// when the file cannot be read or carries no parsable EXIF data.
func Decode(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding exif: %w", err)
	}

	d := &Data{
		DateTime:    stringField(raw, exif.DateTimeOriginal, exif.DateTime),
		Width:       intField(raw, exif.PixelXDimension, exif.ImageWidth),
		Height:      intField(raw, exif.PixelYDimension, exif.ImageLength),
		Orientation: intField(raw, exif.Orientation),
		Make:        stringField(raw, exif.Make),
		Model:       stringField(raw, exif.Model),
		FNumber:     ratField(raw, exif.FNumber),
		ISO:         intField(raw, exif.ISOSpeedRatings),
		FocalLength: ratField(raw, exif.FocalLength),
	}
	d.ExposureSeconds = ratField(raw, exif.ExposureTime)

	if lat, lng, err := raw.LatLong(); err == nil {
		d.HasGPS = true
		d.Latitude = lat
		d.Longitude = lng
	}

	return d, nil
}

// stringField returns the first present string field among names, trimmed
// of the padding some firmware writes.
func stringField(raw *exif.Exif, names ...exif.FieldName) string {
	for _, name := range names {
		tag, err := raw.Get(name)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		if s = strings.TrimRight(strings.TrimSpace(s), "\x00"); s != "" {
			return s
		}
	}
	return ""
}

// intField returns the first present integer field among names.
func intField(raw *exif.Exif, names ...exif.FieldName) int {
	for _, name := range names {
		tag, err := raw.Get(name)
		if err != nil {
			continue
		}
		v, err := tag.Int(0)
		if err != nil {
			continue
		}
		if v != 0 {
			return v
		}
	}
	return 0
}

// ratField returns a rational field as a float, or zero when absent.
func ratField(raw *exif.Exif, name exif.FieldName) float64 {
	tag, err := raw.Get(name)
	if err != nil {
		return 0
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
