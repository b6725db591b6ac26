package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"tidy/internal/logging"
	"tidy/internal/mediatypes"
	"tidy/internal/startup"
	"tidy/internal/store"
	"tidy/internal/taskqueue"
)

// Indexer recreates album and item records from the managed content store.
type Indexer struct {
	store *store.Store
	cfg   *startup.Config

	// First store failure. Classification-phase errors are unrecoverable:
	// a tree the indexer cannot record is a library the later stages
	// cannot trust, so the run aborts instead of skipping.
	failOnce sync.Once
	failErr  error
	aborted  atomic.Bool

	itemsIndexed atomic.Int64
}

// New creates an Indexer over the configured Originals tree.
func New(s *store.Store, cfg *startup.Config) *Indexer {
	return &Indexer{store: s, cfg: cfg}
}

// Run walks the Originals tree and find-or-creates an Album and Item row
// for every supported image. Unsupported files are skipped silently;
// store failures abort the run. Re-runs are no-ops for existing rows.
func (ix *Indexer) Run(ctx context.Context) error {
	root := ix.cfg.OriginalsDir()
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("'%s' does not exist", root)
	}

	logging.Info("indexing %s", root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking '%s': %w", root, err)
	}

	taskqueue.Run("index", files, 1,
		func(path string) string { return path },
		func(path string) error { return ix.indexFile(ctx, root, path) })

	if ix.failErr != nil {
		return ix.failErr
	}

	logging.Info("indexed %d items", ix.itemsIndexed.Load())
	return nil
}

func (ix *Indexer) indexFile(ctx context.Context, root, path string) error {
	if ix.aborted.Load() {
		return nil
	}

	mimeType, ok := mediatypes.Lookup(path)
	if !ok {
		return nil
	}

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		ix.abort(err)
		return err
	}
	if rel == "." {
		logging.Warn("index: skipping %s: not inside an album directory", path)
		return nil
	}

	albumPath := filepath.ToSlash(rel)
	filename := filepath.Base(path)

	album, err := ix.store.FindOrCreateAlbum(ctx, albumPath)
	if err != nil {
		ix.abort(err)
		return err
	}

	item, err := ix.store.FindOrCreateItem(ctx, album.ID, albumPath, filename, mimeType)
	if err != nil {
		ix.abort(err)
		return err
	}

	ix.itemsIndexed.Add(1)
	logging.Info("%s, %s -> Album %d, Item %d", albumPath, filename, album.ID, item.ID)
	return nil
}

func (ix *Indexer) abort(err error) {
	ix.failOnce.Do(func() {
		ix.failErr = err
		ix.aborted.Store(true)
	})
}
