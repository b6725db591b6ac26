package thumbnailer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tidy/internal/startup"
	"tidy/internal/store"
)

func setupTest(t *testing.T) (*store.Store, *startup.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := &startup.Config{
		BaseDir:     base,
		ConvertTool: "convert",
	}
	if err := cfg.EnsureLibrary(); err != nil {
		t.Fatal(err)
	}

	s, err := store.Open(context.Background(), filepath.Join(base, "test.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, cfg
}

func seedItem(t *testing.T, s *store.Store, path, filename, mimeType string) *store.Item {
	t.Helper()

	ctx := context.Background()
	album, err := s.FindOrCreateAlbum(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	item, err := s.FindOrCreateItem(ctx, album.ID, path, filename, mimeType)
	if err != nil {
		t.Fatal(err)
	}
	return item
}

func TestRunGeneratesThumbnail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cfg := setupTest(t)
	ctx := context.Background()

	item := seedItem(t, s, "2016/Holiday", "IMG_0001.jpg", "image/jpeg")

	var calls int
	th := &Thumbnailer{store: s, cfg: cfg, run: func(name string, args ...string) error {
		calls++
		// The conversion target is the last argument.
		return os.WriteFile(args[len(args)-1], []byte("jpeg"), 0o644)
	}}

	if err := th.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("conversion tool invoked %d times, want 1", calls)
	}

	got, err := s.FindItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ThumbnailFilename.String != "IMG_0001.jpeg" {
		t.Errorf("thumbnail filename = %q, want IMG_0001.jpeg", got.ThumbnailFilename.String)
	}

	want := filepath.Join(cfg.ThumbnailsDir(), "2016", "Holiday", "IMG_0001.jpeg")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("thumbnail file missing at %s: %v", want, err)
	}
}

func TestRunRepairsExistingThumbnail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cfg := setupTest(t)
	ctx := context.Background()

	item := seedItem(t, s, "2016/Holiday", "IMG_0001.jpg", "image/jpeg")

	// The thumbnail file already exists on disk; only the database
	// reference is missing.
	dir := filepath.Join(cfg.ThumbnailsDir(), "2016", "Holiday")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "IMG_0001.jpeg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int
	th := &Thumbnailer{store: s, cfg: cfg, run: func(name string, args ...string) error {
		calls++
		return nil
	}}

	if err := th.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("conversion tool invoked %d times during repair, want 0", calls)
	}

	got, _ := s.FindItem(ctx, item.ID)
	if got.ThumbnailFilename.String != "IMG_0001.jpeg" {
		t.Errorf("thumbnail filename = %q, want IMG_0001.jpeg", got.ThumbnailFilename.String)
	}
}

func TestRunFailedConversionLeavesItemPending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cfg := setupTest(t)
	ctx := context.Background()

	item := seedItem(t, s, "2016/Holiday", "IMG_0001.jpg", "image/jpeg")
	seedItem(t, s, "2016/Holiday", "IMG_0002.jpg", "image/jpeg")

	var calls int
	th := &Thumbnailer{store: s, cfg: cfg, run: func(name string, args ...string) error {
		calls++
		// Produces no output file; exit status alone does not count.
		return nil
	}}

	if err := th.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("conversion tool invoked %d times, want 2 (failure must not stop the batch)", calls)
	}

	got, _ := s.FindItem(ctx, item.ID)
	if got.ThumbnailFilename.Valid {
		t.Errorf("thumbnail filename = %q after failed conversion, want NULL", got.ThumbnailFilename.String)
	}
}

func TestRunSkipsNonImages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cfg := setupTest(t)

	seedItem(t, s, "2016/Holiday", "clip.mp4", "video/mp4")

	var calls int
	th := &Thumbnailer{store: s, cfg: cfg, run: func(name string, args ...string) error {
		calls++
		return nil
	}}

	if err := th.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("conversion tool invoked %d times for a non-image, want 0", calls)
	}
}

func TestConvertArgs(t *testing.T) {
	args := convertArgs("/lib/Originals/a.jpg", "/lib/Thumbnails/a.jpeg")

	if args[0] != "/lib/Originals/a.jpg" {
		t.Errorf("source = %q, want first argument", args[0])
	}
	if args[len(args)-1] != "/lib/Thumbnails/a.jpeg" {
		t.Errorf("target = %q, want last argument", args[len(args)-1])
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-define jpeg:size=800x800",
		"-quality 75",
		"-thumbnail 400x",
		"-auto-orient",
		"-unsharp 0x.5",
		"-interlace Plane",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("conversion policy missing %q in %q", want, joined)
		}
	}
}
