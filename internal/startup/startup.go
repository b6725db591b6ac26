package startup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"tidy/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version = "dev"
	Commit  = "unknown"
)

// Config holds all pipeline configuration. Values come from the
// environment; a .env file in the working directory is loaded first when
// present.
type Config struct {
	// BaseDir is the managed library root. Originals/, Thumbnails/ and the
	// database live under it. Defaults to ~/Pictures/TidyLibrary.
	BaseDir string `env:"TIDY_BASE"`

	// DatabasePath is the sqlite database file. Defaults to
	// <BaseDir>/database.sqlite3.
	DatabasePath string `env:"TIDY_DATABASE"`

	// GeodataPath is the offline reverse-geocoding database. Defaults to
	// <BaseDir>/geodata.sqlite3.
	GeodataPath string `env:"TIDY_GEODATA"`

	// ConvertTool is the external image-conversion executable.
	ConvertTool string `env:"TIDY_CONVERT_TOOL" envDefault:"convert"`

	// Port is the browsing API listen port.
	Port string `env:"TIDY_PORT" envDefault:"3000"`
}

// Load reads configuration from the environment and fills in derived
// defaults. It does not touch the filesystem beyond looking for a .env
// file; use EnsureLibrary to validate the library directory.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, "Pictures", "TidyLibrary")
	}

	abs, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving library path: %w", err)
	}
	cfg.BaseDir = abs

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.BaseDir, "database.sqlite3")
	}
	if cfg.GeodataPath == "" {
		cfg.GeodataPath = filepath.Join(cfg.BaseDir, "geodata.sqlite3")
	}

	logging.Debug("library base: %s", cfg.BaseDir)
	logging.Debug("database: %s", cfg.DatabasePath)

	return cfg, nil
}

// OriginalsDir returns the root of the managed content store.
func (c *Config) OriginalsDir() string {
	return filepath.Join(c.BaseDir, "Originals")
}

// ThumbnailsDir returns the root of the derived thumbnail tree.
func (c *Config) ThumbnailsDir() string {
	return filepath.Join(c.BaseDir, "Thumbnails")
}

// EnsureLibrary creates the library directory tree if it does not exist.
// It fails when the base path exists but is not a directory.
func (c *Config) EnsureLibrary() error {
	info, err := os.Stat(c.BaseDir)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory", c.BaseDir)
	}
	if err := os.MkdirAll(c.OriginalsDir(), 0o755); err != nil {
		return fmt.Errorf("creating library: %w", err)
	}
	if err := os.MkdirAll(c.ThumbnailsDir(), 0o755); err != nil {
		return fmt.Errorf("creating library: %w", err)
	}
	return nil
}

// Fatal prints a human-readable message and exits non-zero. Used for setup
// errors before any stage has started.
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
