package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TIDY_BASE", base)
	// Register restores, then clear: a set-but-empty variable would defeat
	// the envDefault tags.
	for _, key := range []string{"TIDY_DATABASE", "TIDY_GEODATA", "TIDY_CONVERT_TOOL", "TIDY_PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseDir != base {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, base)
	}
	if cfg.DatabasePath != filepath.Join(base, "database.sqlite3") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.GeodataPath != filepath.Join(base, "geodata.sqlite3") {
		t.Errorf("GeodataPath = %q", cfg.GeodataPath)
	}
	if cfg.ConvertTool != "convert" {
		t.Errorf("ConvertTool = %q, want convert", cfg.ConvertTool)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TIDY_BASE", base)
	t.Setenv("TIDY_DATABASE", "/somewhere/else.sqlite3")
	t.Setenv("TIDY_GEODATA", "")
	t.Setenv("TIDY_CONVERT_TOOL", "magick")
	t.Setenv("TIDY_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabasePath != "/somewhere/else.sqlite3" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.ConvertTool != "magick" {
		t.Errorf("ConvertTool = %q, want magick", cfg.ConvertTool)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
}

func TestLibraryDirs(t *testing.T) {
	cfg := &Config{BaseDir: "/lib"}

	if got := cfg.OriginalsDir(); got != filepath.Join("/lib", "Originals") {
		t.Errorf("OriginalsDir = %q", got)
	}
	if got := cfg.ThumbnailsDir(); got != filepath.Join("/lib", "Thumbnails") {
		t.Errorf("ThumbnailsDir = %q", got)
	}
}

func TestEnsureLibrary(t *testing.T) {
	cfg := &Config{BaseDir: filepath.Join(t.TempDir(), "library")}

	if err := cfg.EnsureLibrary(); err != nil {
		t.Fatalf("EnsureLibrary failed: %v", err)
	}

	for _, dir := range []string{cfg.OriginalsDir(), cfg.ThumbnailsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory at %s", dir)
		}
	}

	// Idempotent on an existing tree.
	if err := cfg.EnsureLibrary(); err != nil {
		t.Errorf("EnsureLibrary on existing tree failed: %v", err)
	}
}

func TestEnsureLibraryBaseIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{BaseDir: path}
	if err := cfg.EnsureLibrary(); err == nil {
		t.Error("expected error when the base path is a file")
	}
}
