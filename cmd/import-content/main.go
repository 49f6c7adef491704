// Package main loads YAML reference content and upserts it into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/config"
	"github.com/cory-johannsen/charasheet/internal/importer"
	"github.com/cory-johannsen/charasheet/internal/lifecycle"
	"github.com/cory-johannsen/charasheet/internal/observability"
	"github.com/cory-johannsen/charasheet/internal/storage/memory"
	"github.com/cory-johannsen/charasheet/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "", "content directory (default: content.dir from config)")
	exportDir := flag.String("export", "", "also write the normalised content to this directory")
	dryRun := flag.Bool("dry-run", false, "validate and import into memory only")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging, "import-content")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *dir == "" {
		*dir = cfg.Content.Dir
	}

	lc := lifecycle.New(logger)
	err = lc.Run(context.Background(), "import", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		var sink importer.Sink
		if *dryRun {
			sink = memory.New()
		} else {
			pool, err := postgres.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			lc.Add("database", pool)
			sink = pool.Store()
		}

		if _, err := importer.New(importer.DirSource{}, sink, logger).Run(ctx, *dir); err != nil {
			return err
		}
		if *exportDir == "" {
			return nil
		}
		content, err := importer.DirSource{}.Load(*dir)
		if err != nil {
			return err
		}
		if err := importer.Export(content, *exportDir); err != nil {
			return err
		}
		logger.Info("content exported", zap.String("output", *exportDir))
		return nil
	})
	if err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}
