// Package identify is the image-identification collaborator: given a file
// path it reports pixel dimensions, supporting every raster format the
// pipeline accepts. It is the fallback when EXIF omits dimensions and the
// only dimension source for non-JPEG formats.
package identify

import (
	"image"
	"os"

	"github.com/disintegration/imaging"

	// Decoders for the supported raster formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions holds image width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// File returns the pixel dimensions of the image at path. It reads only
// the image header where the format allows; a full decode via the imaging
// library is the last resort for files with damaged headers.
func File(path string) (*Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if config, _, err := image.DecodeConfig(f); err == nil {
		return &Dimensions{Width: config.Width, Height: config.Height}, nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
