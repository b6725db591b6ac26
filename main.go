package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tidy/internal/extractor"
	"tidy/internal/geocode"
	"tidy/internal/importer"
	"tidy/internal/indexer"
	"tidy/internal/logging"
	"tidy/internal/server"
	"tidy/internal/startup"
	"tidy/internal/store"
	"tidy/internal/tagger"
	"tidy/internal/thumbnailer"
)

const usage = `usage: tidy <command> [arguments]

commands:
  import <directory>   import a directory tree into the library
  index                rebuild album/item records from the library
  extract [-from id]   extract item metadata and refresh tag stats
  thumbs               generate missing thumbnails
  tags                 derive tags and refresh tag stats
  serve                run the browsing API
  whereis <item-id>    print the location of an item
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := startup.Load()
	if err != nil {
		startup.Fatal("%v", err)
	}

	logging.Info("tidy %s (%s), library %s", startup.Version, startup.Commit, cfg.BaseDir)

	ctx := context.Background()

	switch os.Args[1] {
	case "import":
		runImport(cfg, os.Args[2:])
	case "index":
		runIndex(ctx, cfg)
	case "extract":
		runExtract(ctx, cfg, os.Args[2:])
	case "thumbs":
		runThumbs(ctx, cfg)
	case "tags":
		runTags(ctx, cfg)
	case "serve":
		runServe(ctx, cfg)
	case "whereis":
		runWhereis(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *startup.Config) *store.Store {
	s, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		startup.Fatal("%v", err)
	}
	return s
}

// openGeocoder opens the geodata database when present. Geocoding is
// optional; without it, items keep raw coordinates only.
func openGeocoder(ctx context.Context, cfg *startup.Config) *geocode.DB {
	if _, err := os.Stat(cfg.GeodataPath); err != nil {
		logging.Warn("no geodata database at %s, skipping geocoding", cfg.GeodataPath)
		return nil
	}
	g, err := geocode.Open(ctx, cfg.GeodataPath)
	if err != nil {
		logging.Warn("opening geodata: %v, skipping geocoding", err)
		return nil
	}
	return g
}

func runImport(cfg *startup.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tidy import <directory>")
		os.Exit(1)
	}
	if err := cfg.EnsureLibrary(); err != nil {
		startup.Fatal("%v", err)
	}
	if err := importer.New(cfg).Run(args[0]); err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println("Done!")
}

func runIndex(ctx context.Context, cfg *startup.Config) {
	s := openStore(ctx, cfg)
	defer s.Close()

	if err := indexer.New(s, cfg).Run(ctx); err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println("Done!")
}

func runExtract(ctx context.Context, cfg *startup.Config, args []string) {
	flags := flag.NewFlagSet("extract", flag.ExitOnError)
	fromID := flags.Int64("from", 0, "only extract items above this identifier")
	if err := flags.Parse(args); err != nil {
		os.Exit(1)
	}

	s := openStore(ctx, cfg)
	defer s.Close()

	geo := openGeocoder(ctx, cfg)
	var reverser geocode.Reverser
	if geo != nil {
		defer geo.Close()
		reverser = geo
	}

	if err := extractor.New(s, cfg, reverser).Run(ctx, *fromID); err != nil {
		startup.Fatal("%v", err)
	}
	if err := tagger.New(s, nil).RefreshStats(ctx); err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println("Done!")
}

func runThumbs(ctx context.Context, cfg *startup.Config) {
	s := openStore(ctx, cfg)
	defer s.Close()

	if err := thumbnailer.New(s, cfg).Run(ctx); err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println("Done!")
}

func runTags(ctx context.Context, cfg *startup.Config) {
	s := openStore(ctx, cfg)
	defer s.Close()

	geo := openGeocoder(ctx, cfg)
	var finder geocode.Finder
	if geo != nil {
		defer geo.Close()
		finder = geo
	}

	if err := tagger.New(s, finder).Run(ctx); err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println("Done!")
}

func runServe(ctx context.Context, cfg *startup.Config) {
	s := openStore(ctx, cfg)
	defer s.Close()

	if err := server.New(s, cfg).ListenAndServe(); err != nil {
		startup.Fatal("%v", err)
	}
}

func runWhereis(ctx context.Context, cfg *startup.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tidy whereis <item-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: tidy whereis <item-id>")
		os.Exit(1)
	}

	s := openStore(ctx, cfg)
	defer s.Close()

	item, err := s.FindItem(ctx, id)
	if err == sql.ErrNoRows {
		fmt.Println("Item not found")
		os.Exit(1)
	}
	if err != nil {
		startup.Fatal("%v", err)
	}
	fmt.Println(filepath.Join(cfg.OriginalsDir(), filepath.FromSlash(item.Path), item.Filename))
}
