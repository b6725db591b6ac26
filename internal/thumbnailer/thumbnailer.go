package thumbnailer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tidy/internal/logging"
	"tidy/internal/mediatypes"
	"tidy/internal/metrics"
	"tidy/internal/startup"
	"tidy/internal/store"
	"tidy/internal/taskqueue"
)

// albumConcurrency bounds how many albums are thumbnailed at once. Within
// an album processing is strictly serial, so this is also the cap on
// concurrent conversion subprocesses.
const albumConcurrency = 2

// CommandRunner invokes the external conversion tool. Injectable for
// tests.
type CommandRunner func(name string, args ...string) error

// Thumbnailer produces bounded-size derivative images for items that have
// none, through the external conversion tool.
type Thumbnailer struct {
	store *store.Store
	cfg   *startup.Config
	run   CommandRunner
}

// New creates a Thumbnailer using the configured conversion tool.
func New(s *store.Store, cfg *startup.Config) *Thumbnailer {
	return &Thumbnailer{store: s, cfg: cfg, run: runCommand}
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Run generates thumbnails for every item lacking one. Albums are
// processed with bounded concurrency and serially within each album, so a
// single directory never saturates the subprocess pool.
func (t *Thumbnailer) Run(ctx context.Context) error {
	albums, err := t.store.AllAlbums(ctx)
	if err != nil {
		return fmt.Errorf("selecting albums: %w", err)
	}

	taskqueue.Run("thumbnail albums", albums, albumConcurrency,
		func(a store.Album) string { return a.Name },
		func(a store.Album) error { return t.thumbnailAlbum(ctx, a) })

	return nil
}

func (t *Thumbnailer) thumbnailAlbum(ctx context.Context, album store.Album) error {
	items, err := t.store.ItemsMissingThumbnail(ctx, album.ID)
	if err != nil {
		return fmt.Errorf("selecting items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	logging.Info("thumbnailing %s (%d items)", album.Name, len(items))

	taskqueue.Run("thumbnail items", items, 1,
		func(item store.Item) string { return taskqueue.ID(item.ID) },
		func(item store.Item) error { return t.thumbnailItem(ctx, item) })

	return nil
}

// thumbnailItem produces Thumbnails/<path>/<basename>.jpeg for one item.
// If the file already exists it only repairs the database reference. The
// conversion tool's exit status is not trusted; success means the output
// file exists afterward.
func (t *Thumbnailer) thumbnailItem(ctx context.Context, item store.Item) error {
	if !mediatypes.IsImage(item.MimeType.String) {
		return nil
	}

	originalPath := filepath.Join(t.cfg.OriginalsDir(), filepath.FromSlash(item.Path), item.Filename)
	thumbnailDir := filepath.Join(t.cfg.ThumbnailsDir(), filepath.FromSlash(item.Path))
	thumbnailFilename := strings.TrimSuffix(item.Filename, filepath.Ext(item.Filename)) + ".jpeg"
	thumbnailPath := filepath.Join(thumbnailDir, thumbnailFilename)

	if fileExists(thumbnailPath) {
		metrics.ThumbnailsRepaired.Inc()
		return t.store.SetThumbnail(ctx, item.ID, thumbnailFilename)
	}

	if err := os.MkdirAll(thumbnailDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", thumbnailDir, err)
	}

	if err := t.run(t.cfg.ConvertTool, convertArgs(originalPath, thumbnailPath)...); err != nil {
		logging.Debug("convert %s: %v", originalPath, err)
	}

	if !fileExists(thumbnailPath) {
		metrics.ThumbnailFailures.Inc()
		logging.Warn("failed to convert %s to %s", originalPath, thumbnailPath)
		return nil
	}

	metrics.ThumbnailsGenerated.Inc()
	return t.store.SetThumbnail(ctx, item.ID, thumbnailFilename)
}

// convertArgs is the fixed conversion policy: bounded decode size to cap
// memory on huge sources, ~400px shorter edge, quality 75, auto-orient,
// sharpen, progressive encoding.
func convertArgs(source, target string) []string {
	return []string{
		source,
		"-define", "jpeg:size=800x800",
		"-format", "jpeg",
		"-quality", "75",
		"-thumbnail", "400x",
		"-auto-orient",
		"-unsharp", "0x.5",
		"-interlace", "Plane",
		target,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
