// Package main provides a database migration runner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charasheet/internal/config"
	"github.com/cory-johannsen/charasheet/internal/lifecycle"
	"github.com/cory-johannsen/charasheet/internal/observability"
	"github.com/cory-johannsen/charasheet/migrations"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
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
	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	lc := lifecycle.New(logger)
	err = lc.Run(context.Background(), "migrate", func(ctx context.Context) error {
		m, err := migrations.New(cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("creating migrator: %w", err)
		}
		lc.Add("migrator", lifecycle.CloseFunc(func() { _, _ = m.Close() }))

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				m.GracefulStop <- true
			case <-done:
			}
		}()

		switch *direction {
		case "up":
			if *steps > 0 {
				err = m.Steps(*steps)
			} else {
				err = m.Up()
			}
		case "down":
			if *steps > 0 {
				err = m.Steps(-*steps)
			} else {
				err = m.Down()
			}
		default:
			return fmt.Errorf("invalid direction %q, must be 'up' or 'down'", *direction)
		}

		noChange := errors.Is(err, migrate.ErrNoChange)
		if err != nil && !noChange {
			return fmt.Errorf("migration failed: %w", err)
		}

		version, dirty, _ := m.Version()
		logger.Info("migration finished",
			zap.String("direction", *direction),
			zap.Bool("changed", !noChange),
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}
