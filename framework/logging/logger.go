// Package logging builds the zap logger shared by the container and the
// application kernel.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-koin/framework/config"
)

// New builds a logger from cfg. Production environments get JSON output,
// everything else the development console encoder, unless Log.Format says
// otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zc zap.Config
	switch format(cfg) {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Log.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}

func format(cfg *config.Config) string {
	if cfg.Log.Format != "" {
		return cfg.Log.Format
	}
	if cfg.App.Env == "production" {
		return "json"
	}
	return "console"
}
