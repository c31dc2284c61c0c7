package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/praxis-ed/studyengine/internal/catalog"
	"github.com/praxis-ed/studyengine/internal/cycle"
	"github.com/praxis-ed/studyengine/internal/performance"
	"github.com/praxis-ed/studyengine/internal/platform/cache"
	"github.com/praxis-ed/studyengine/internal/platform/config"
	"github.com/praxis-ed/studyengine/internal/platform/database"
	"github.com/praxis-ed/studyengine/internal/progress"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, cleanup, err := buildApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	mux := newMux(app)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "catalog_source", cfg.Catalog.Source)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildApp wires the catalog, progress, performance, and cycle subsystems
// from configuration. The cache is optional: when Redis is unreachable the
// server runs with uncached resolution.
func buildApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	a := &app{
		bridge:        progress.NewBridge(),
		defaultBudget: cfg.Cycle.DefaultBudgetHours,
	}

	var repo catalog.Repository
	switch cfg.Catalog.Source {
	case "postgres":
		db, err := database.New(ctx, database.Config{
			URL:          cfg.Database.URL,
			MaxConns:     cfg.Database.MaxConns,
			MinConns:     cfg.Database.MinConns,
			ConnLifetime: cfg.Database.ConnLifetime,
			ConnIdleTime: cfg.Database.ConnIdleTime,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		closers = append(closers, db.Close)
		a.db = db

		repo, err = catalog.NewPostgresCatalog(db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	default:
		loader, err := catalog.NewLoader(cfg.Catalog.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		repo = loader.Catalog()
	}

	a.repo = repo

	var resolver catalog.GraphResolver = catalog.NewResolver(repo)
	if c, err := cache.New(ctx, cache.Config{URL: cfg.Cache.URL}); err != nil {
		slog.Warn("cache unavailable, resolving uncached", "error", err)
	} else {
		closers = append(closers, func() { c.Close() })
		a.cache = c
		resolver = catalog.NewCachedResolver(resolver, c.Client, cfg.Cache.ResolveTTL)
	}
	a.resolver = resolver

	var progressStore progress.Store
	var cycleStore cycle.Store
	if a.db != nil {
		ps, err := progress.NewPostgresStore(a.db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		progressStore = ps

		cs, err := cycle.NewPostgresStore(a.db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := cs.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		cycleStore = cs

		attempts, err := performance.NewPostgresAttempts(a.db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a.attempts = attempts
	} else {
		progressStore = progress.NewMemoryStore()
		cycleStore = cycle.NewMemoryStore()
		a.attempts = performance.NewMemoryAttempts()
	}

	a.aggregator = progress.NewAggregator(progress.AggregatorConfig{
		Resolver: a.resolver,
		Store:    progressStore,
		Bridge:   a.bridge,
	})

	a.cycleStore = cycleStore
	a.autosaver = cycle.NewAutoSaver(cycleStore, cfg.Cycle.AutosaveDelay)
	closers = append(closers, func() {
		if err := a.autosaver.Close(); err != nil {
			slog.Error("final autosave flush failed", "error", err)
		}
	})

	return a, cleanup, nil
}
