package mediatypes

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		wantMime string
		wantOK   bool
	}{
		{"holiday/IMG_1234.jpg", "image/jpeg", true},
		{"holiday/IMG_1234.JPG", "image/jpeg", true},
		{"scan.jpeg", "image/jpeg", true},
		{"screenshot.png", "image/png", true},
		{"anim.gif", "image/gif", true},
		{"scan.tiff", "image/tiff", true},
		{"scan.tif", "image/tiff", true},
		{"old.bmp", "image/bmp", true},
		{"modern.webp", "image/webp", true},
		{"movie.mp4", "", false},
		{"notes.txt", "", false},
		{"raw.nef", "", false},
		{"noextension", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ok := Lookup(tt.name)
			if mime != tt.wantMime || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)",
					tt.name, mime, ok, tt.wantMime, tt.wantOK)
			}
		})
	}
}

func TestIsImage(t *testing.T) {
	for _, mime := range []string{
		"image/bmp", "image/gif", "image/jpeg", "image/png",
		"image/pjpeg", "image/tiff", "image/webp", "image/x-tiff",
		"image/x-windows-bmp",
	} {
		if !IsImage(mime) {
			t.Errorf("IsImage(%q) = false, want true", mime)
		}
	}

	for _, mime := range []string{"video/mp4", "text/plain", "image/svg+xml", ""} {
		if IsImage(mime) {
			t.Errorf("IsImage(%q) = true, want false", mime)
		}
	}
}

func TestIsJPEG(t *testing.T) {
	if !IsJPEG("image/jpeg") || !IsJPEG("image/pjpeg") {
		t.Error("JPEG variants not recognized")
	}
	if IsJPEG("image/png") {
		t.Error("image/png recognized as JPEG")
	}
}
