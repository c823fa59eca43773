// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notestore/internal/api"
	"github.com/starford/notestore/internal/journal"
	"github.com/starford/notestore/internal/mcpserver"
	"github.com/starford/notestore/internal/noteservice"
	"github.com/starford/notestore/internal/sse"
	"github.com/starford/notestore/internal/storage"
	"github.com/starford/notestore/internal/watch"
	pkgconfig "github.com/starford/notestore/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{
		logOutput: os.Stdout,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// openStore creates the cache directory if needed and builds the note service,
// with the activity journal attached when configured. The returned cleanup
// func is never nil.
func openStore(cfg *Config, logger *slog.Logger) (*noteservice.Service, *journal.DB, func(), error) {
	if err := storage.EnsureDir(cfg.Cache.Dir); err != nil {
		return nil, nil, func() {}, err
	}
	store, err := storage.NewFS(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("init storage: %w", err)
	}

	opts := []noteservice.Option{noteservice.WithLogger(logger)}
	var db *journal.DB
	cleanup := func() {}
	if cfg.Journal.Enabled() {
		db, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("init journal: %w", err)
		}
		cleanup = func() { _ = db.Close() }
		opts = append(opts, noteservice.WithRecorder(db))
	}
	return noteservice.NewService(store, opts...), db, cleanup, nil
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := pkgconfig.Validate(cfg); err != nil {
		return err
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("cache_dir", cfg.Cache.Dir),
		slog.String("journal_path", cfg.Journal.Path),
		slog.Bool("events", cfg.Events.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, closeStore, err := openStore(cfg, logger)
	defer closeStore()
	if err != nil {
		return err
	}

	var activity api.ActivitySource
	if db != nil {
		activity = db
	}

	g, gCtx := errgroup.WithContext(ctx)

	var (
		events http.Handler
		broker *sse.Broker
	)
	if cfg.Events.Enabled {
		broker = sse.NewBroker(cfg.Events.Throttle)
		defer broker.Close()
		events = broker

		g.Go(func() error {
			err := watch.Watch(gCtx, svc.Root(), logger, broker.PublishNoteEvent)
			if err != nil {
				// events are best effort; the store keeps serving
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	router := api.NewRouter(svc, api.Assets(), activity, events)
	handler := chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	).Handler(router)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if broker != nil {
		// Shutdown does not cancel in-flight requests; open /events streams
		// only end when the broker closes their channels.
		httpServer.RegisterOnShutdown(broker.Close)
	}

	g.Go(func() error {
		logger.Info("Server running", slog.String("url", "http://"+cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so background workers stop once the
// HTTP server has been shut down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the note store over MCP stdio. Logs go to the configured
// output, which must not be stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := cfg.Cache.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, closeStore, err := openStore(cfg, logger)
	defer closeStore()
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("cache_dir", cfg.Cache.Dir))
	errCh := make(chan error, 1)
	go func() { errCh <- mcpserver.New(svc, app.version).ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
