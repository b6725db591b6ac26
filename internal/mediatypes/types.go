package mediatypes

import (
	"path/filepath"
	"strings"
)

// mimeByExtension maps supported file extensions to their MIME types. Only
// raster image formats the pipeline can thumbnail are listed; everything
// else is skipped during import and indexing.
var mimeByExtension = map[string]string{
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// imageMimeTypes is the allow-list of MIME types accepted by every stage.
var imageMimeTypes = map[string]bool{
	"image/bmp":           true,
	"image/gif":           true,
	"image/jpeg":          true,
	"image/png":           true,
	"image/pjpeg":         true,
	"image/tiff":          true,
	"image/webp":          true,
	"image/x-tiff":        true,
	"image/x-windows-bmp": true,
}

// Lookup classifies a file by name. It returns the MIME type and true for
// supported raster images, and "" and false for everything else.
func Lookup(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	mime, ok := mimeByExtension[ext]
	return mime, ok
}

// IsImage reports whether mime is on the supported image allow-list.
func IsImage(mime string) bool {
	return imageMimeTypes[mime]
}

// IsJPEG reports whether mime is a JPEG variant, the only family the EXIF
// extraction path handles.
func IsJPEG(mime string) bool {
	return mime == "image/jpeg" || mime == "image/pjpeg"
}
