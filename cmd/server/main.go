package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"smart-grocer/internal/bootstrap"
	"smart-grocer/internal/config"
	"smart-grocer/internal/httpapi"
	"smart-grocer/internal/logging"
	"smart-grocer/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. It returns instead of exiting so the
// runtime is always closed.
func run(ctx context.Context, cfg *config.Config) error {
	// 2. Storage, metrics and suggestion models
	rt, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	dataPath := filepath.Dir(cfg.DatabasePath)

	// 3. HTTP API
	router := httpapi.NewRouter(httpapi.Options{
		App:         rt.App,
		Collectors:  rt.Collectors,
		Gatherer:    rt.Registry,
		CORSOrigins: cfg.CORSOrigins,
		DataPath:    dataPath,
	})

	// 4. Optional Telegram Bot
	if cfg.TelegramEnabled() {
		api, err := telegram.Connect(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram Bot: %w", err)
		}
		bot := telegram.NewBot(api, rt.App, telegram.Options{
			AllowUserIDs: cfg.TelegramAllowUserIDs,
			Usage:        rt.Metrics,
			DataPath:     dataPath,
		})
		router.POST("/webhook", gin.WrapF(bot.HandleWebhook))
	}

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "port", cfg.Port, "storage", cfg.StorageBackend, "suggestions", cfg.SuggestionsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
	return nil
}
