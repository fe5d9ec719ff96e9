package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/dagjudge/internal/judge"
)

// App encapsulates the application's state, dependencies, and configuration.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	judge      judge.Judge
	httpServer *http.Server
	shutdown   []func(context.Context) error
}

// Option overrides a dependency NewApp would otherwise build from Config.
type Option func(*App)

// WithJudge replaces the configured judge.
func WithJudge(j judge.Judge) Option {
	return func(a *App) { a.judge = j }
}

// NewApp creates a new application instance. The judge is built lazily on the
// first Run so that Validate works without provider credentials.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger initialized.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Close releases everything Run started: the health check server and the
// trace exporter.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.httpServer != nil {
		a.logger.Debug("Shutting down health check server.")
		if err := a.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
		a.httpServer = nil
	}
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.shutdown = nil
	return firstErr
}
