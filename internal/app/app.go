package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/opgraph/internal/buildfile"
	"github.com/vk/opgraph/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *slog.Logger
	config *Config
	loader *buildfile.Loader
}

// NewApp is the constructor for the main application. Logs go to logW
// through the App's own isolated logger.
func NewApp(logW io.Writer, cfg *Config, loader *buildfile.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = buildfile.NewLoader()
	}
	return &App{
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

// Config returns the application's configuration.
func (a *App) Config() *Config {
	return a.config
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
