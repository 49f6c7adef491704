// Package observability provides logging utilities.
package observability

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/charasheet/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries the component field.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, component string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if component != "" {
		zapCfg.InitialFields = map[string]any{"component": component}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Operation logs the outcome of one named operation when the returned
// function is deferred with a pointer to the operation's error:
//
//	defer observability.Operation(logger, "adjust_pool")(&err)
//
// Failures are logged at Warn, successes at Info, both with the elapsed time.
func Operation(logger *zap.Logger, name string, fields ...zap.Field) func(*error) {
	start := time.Now()
	return func(errp *error) {
		fields := append(fields, zap.String("op", name), zap.Duration("elapsed", time.Since(start)))
		if errp != nil && *errp != nil {
			logger.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		logger.Info("operation completed", fields...)
	}
}
