package importer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"tidy/internal/logging"
	"tidy/internal/mediatypes"
	"tidy/internal/startup"
	"tidy/internal/taskqueue"
	"tidy/internal/timestamp"
)

// Importer copies a source directory tree into the managed content store,
// grouped into albums by source directory.
type Importer struct {
	cfg *startup.Config
}

// New creates an Importer for the configured library.
func New(cfg *startup.Config) *Importer {
	return &Importer{cfg: cfg}
}

// albumBuild accumulates one album during the scan phase: the source
// directory, its files, and the earliest capture time seen among them.
type albumBuild struct {
	path      string
	timestamp int64
	files     []string
}

// Run imports every supported image under directory. The scan phase
// classifies files and groups them by their containing directory; the copy
// phase lays each group out as Originals/<year>/<dir-basename>. Both
// phases run serially: they are disk-bound and copy large files.
func (im *Importer) Run(directory string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return fmt.Errorf("'%s' does not exist", directory)
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory", directory)
	}

	files, err := collectFiles(directory)
	if err != nil {
		return fmt.Errorf("scanning '%s': %w", directory, err)
	}

	// Albums are keyed by the full source directory path, not its
	// basename, so two identically-named directories in different places
	// stay distinct albums.
	builds := make(map[string]*albumBuild)
	var mu sync.Mutex

	taskqueue.Run("import scan", files, 1,
		func(path string) string { return path },
		func(path string) error {
			if _, ok := mediatypes.Lookup(path); !ok {
				// Ignore unsupported files
				return nil
			}

			ts, err := timestamp.Resolve(path)
			if err != nil {
				return fmt.Errorf("resolving timestamp: %w", err)
			}

			albumPath := filepath.Dir(path)

			mu.Lock()
			defer mu.Unlock()
			build, ok := builds[albumPath]
			if !ok {
				build = &albumBuild{path: albumPath, timestamp: ts}
				builds[albumPath] = build
			}
			build.files = append(build.files, path)
			if ts < build.timestamp {
				build.timestamp = ts
			}
			return nil
		})

	albums := make([]*albumBuild, 0, len(builds))
	for _, build := range builds {
		albums = append(albums, build)
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].path < albums[j].path })

	taskqueue.Run("import copy", albums, 1,
		func(a *albumBuild) string { return a.path },
		im.copyAlbum)

	return nil
}

// collectFiles walks the source tree and returns every regular file.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("import: cannot access %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// copyAlbum copies one album's files into Originals/<year>/<basename>,
// preserving file timestamps. It never touches the relational store; the
// indexer picks up the resulting tree.
func (im *Importer) copyAlbum(a *albumBuild) error {
	year := strconv.Itoa(time.Unix(a.timestamp, 0).UTC().Year())
	name := filepath.Base(a.path)

	destination := filepath.Join(im.cfg.OriginalsDir(), year, name)
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destination, err)
	}

	for _, source := range a.files {
		target := filepath.Join(destination, filepath.Base(source))
		if err := copyFile(source, target); err != nil {
			return fmt.Errorf("copying %s: %w", source, err)
		}
	}

	logging.Info("%s %s -> %s", name, year, destination)
	return nil
}

// copyFile copies source to target and carries the source mtime over, so
// the fallback timestamp survives the copy.
func copyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(target, info.ModTime(), info.ModTime())
}
