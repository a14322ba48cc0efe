package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smart-grocer/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DatabasePath:    filepath.Join(dir, "smartgrocer.db"),
		StorageBackend:  config.BackendMemory,
		DefaultCategory: "Outros",
		Port:            0,
	}
}

func TestRun(t *testing.T) {
	t.Run("TelegramConnectFailureIsReturned", func(t *testing.T) {
		tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
		}))
		defer tg.Close()

		cfg := testConfig(t)
		cfg.TelegramBotToken = "bad-token"
		cfg.TelegramAPIEndpoint = tg.URL + "/bot%s/%s"
		cfg.TelegramWebhookURL = "https://example.com/webhook"

		err := run(context.Background(), cfg)
		if err == nil || !strings.Contains(err.Error(), "Telegram") {
			t.Fatalf("Expected a Telegram init error, got %v", err)
		}
	})

	t.Run("StopsWhenContextIsDone", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := testConfig(t)
		done := make(chan error, 1)
		go func() { done <- run(ctx, cfg) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			// A slow start may observe the cancellation during bootstrap.
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("Expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("run did not return after cancellation")
		}
	})
}
