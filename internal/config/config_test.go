package config

import (
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	clearEnv := func() {
		for _, k := range []string{
			"DATABASE_PATH", "STORAGE_BACKEND", "STORAGE_DIR", "DEFAULT_CATEGORY",
			"GEMINI_API_KEY", "GEMINI_MODEL", "GROQ_API_KEY", "GROQ_API_URL", "PORT", "CORS_ORIGINS",
			"LOG_LEVEL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_API_ENDPOINT", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOW_USER_IDS",
		} {
			setEnv(k, "")
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/smartgrocer.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.StorageBackend != BackendSQLite {
			t.Errorf("Expected sqlite backend, got '%s'", cfg.StorageBackend)
		}
		if cfg.GroqAPIURL != "https://api.groq.com/openai/v1/chat/completions" {
			t.Errorf("Expected default GroqAPIURL, got '%s'", cfg.GroqAPIURL)
		}
		if cfg.Port != 8080 {
			t.Errorf("Expected port 8080, got %d", cfg.Port)
		}
		if cfg.DefaultCategory != "Outros" {
			t.Errorf("Expected default category 'Outros', got '%s'", cfg.DefaultCategory)
		}
		if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
			t.Errorf("Unexpected CORS origins: %v", cfg.CORSOrigins)
		}
		if cfg.SuggestionsEnabled() {
			t.Error("Suggestions must be disabled without API keys")
		}
		if cfg.TelegramEnabled() {
			t.Error("Telegram must be disabled without a token")
		}
	})

	t.Run("Success", func(t *testing.T) {
		clearEnv()
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("STORAGE_BACKEND", "File")
		setEnv("PORT", "9090")
		setEnv("CORS_ORIGINS", "http://a.test, http://b.test")
		setEnv("TELEGRAM_ALLOW_USER_IDS", "12, 34")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" || !cfg.SuggestionsEnabled() {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.StorageBackend != BackendFile {
			t.Errorf("Expected file backend, got '%s'", cfg.StorageBackend)
		}
		if cfg.Port != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.Port)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
			t.Errorf("Unexpected CORS origins: %v", cfg.CORSOrigins)
		}
		if len(cfg.TelegramAllowUserIDs) != 2 || cfg.TelegramAllowUserIDs[1] != 34 {
			t.Errorf("Unexpected allow list: %v", cfg.TelegramAllowUserIDs)
		}
	})

	errorCases := []struct {
		name, key, value, expectedError string
	}{
		{"InvalidBackend", "STORAGE_BACKEND", "redis", `STORAGE_BACKEND must be one of sqlite, file, memory; got "redis"`},
		{"InvalidPort", "PORT", "http", `PORT must be a valid port number; got "http"`},
		{"InvalidLogLevel", "LOG_LEVEL", "trace", `LOG_LEVEL must be one of debug, info, warn, error; got "trace"`},
		{"InvalidUserID", "TELEGRAM_ALLOW_USER_IDS", "12,abc", `TELEGRAM_ALLOW_USER_IDS contains an invalid user id "abc"`},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv()
			setEnv(tc.key, tc.value)

			_, err := NewFromEnv()
			if err == nil {
				t.Fatalf("Expected an error for %s, got nil", tc.key)
			}
			if err.Error() != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, err.Error())
			}
		})
	}
}
