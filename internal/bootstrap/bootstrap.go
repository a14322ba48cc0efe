// Package bootstrap assembles the application from configuration. Both
// binaries share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"smart-grocer/internal/app"
	"smart-grocer/internal/clipper"
	"smart-grocer/internal/config"
	"smart-grocer/internal/database"
	"smart-grocer/internal/llm"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/storage"
	"smart-grocer/internal/suggest"
)

// Runtime holds the assembled application and the resources to release.
type Runtime struct {
	App        *app.App
	DB         *database.DB
	Metrics    *metrics.Store
	Collectors *metrics.Collectors
	Registry   *prometheus.Registry

	closers []func() error
}

// Open wires storage, metrics, the suggestion models and the App.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt := &Runtime{DB: db, Registry: prometheus.NewRegistry()}
	rt.closers = append(rt.closers, db.Close)

	backend, err := newBackend(cfg, db)
	if err != nil {
		rt.Close()
		return nil, err
	}
	gateway := storage.NewGateway(backend)
	rt.closers = append(rt.closers, gateway.Close)

	rt.Metrics = metrics.NewStore(db.SQL)
	rt.Collectors = metrics.NewCollectors(rt.Registry)

	generator, err := rt.newGenerator(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	deps := app.Deps{
		Gateway:       gateway,
		Clock:         shopping.SystemClock,
		Collectors:    rt.Collectors,
		OtherCategory: cfg.DefaultCategory,
	}
	if generator != nil {
		deps.Generator = generator
		deps.Clipper = clipper.NewClipper(generator)
	}

	rt.App, err = app.New(ctx, deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func newBackend(cfg *config.Config, db *database.DB) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		slog.Warn("Using in-memory storage: the list is lost on exit")
		return storage.NewMemoryBackend(), nil
	case config.BackendFile:
		b, err := storage.NewFileBackend(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return b, nil
	default:
		return storage.NewSQLiteBackend(db.SQL), nil
	}
}

// newGenerator returns nil when no model credential is configured.
func (rt *Runtime) newGenerator(ctx context.Context, cfg *config.Config) (*suggest.LLMGenerator, error) {
	var primary, fallback llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg, suggest.ResponseSchema())
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		rt.closers = append(rt.closers, gemini.Close)
		primary = gemini
	}
	if cfg.GroqAPIKey != "" {
		fallback = llm.NewGroqClient(cfg)
	}

	var textGen llm.TextGenerator
	switch {
	case primary != nil && fallback != nil:
		textGen = llm.FallbackGenerator{Primary: primary, Fallback: fallback}
	case primary != nil:
		textGen = primary
	case fallback != nil:
		textGen = fallback
	default:
		slog.Info("No model API key configured; suggestions are disabled")
		return nil, nil
	}
	return suggest.NewLLMGenerator(textGen, rt.Metrics, shopping.SystemClock), nil
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
