package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath    string
	StorageBackend  string
	StorageDir      string
	DefaultCategory string

	// Suggestion models. Both keys are optional; without them suggestions
	// are reported as unavailable.
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqAPIURL   string

	// HTTP server
	Port        int
	CORSOrigins []string

	LogLevel string

	// Telegram Config (optional)
	TelegramBotToken     string
	TelegramAPIEndpoint  string
	TelegramWebhookURL   string
	TelegramAllowUserIDs []int64
}

// SuggestionsEnabled reports whether any suggestion model is configured.
func (c *Config) SuggestionsEnabled() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	storageBackend := strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite))
	switch storageBackend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of sqlite, file, memory; got %q", storageBackend)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a valid port number; got %q", os.Getenv("PORT"))
	}

	logLevel := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", logLevel)
	}

	defaultCategory := strings.TrimSpace(getEnv("DEFAULT_CATEGORY", "Outros"))
	if defaultCategory == "" {
		return nil, fmt.Errorf("DEFAULT_CATEGORY must not be blank")
	}

	var allowIDs []int64
	for _, raw := range splitList(os.Getenv("TELEGRAM_ALLOW_USER_IDS")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOW_USER_IDS contains an invalid user id %q", raw)
		}
		allowIDs = append(allowIDs, id)
	}

	return &Config{
		DatabasePath:         getEnv("DATABASE_PATH", "data/smartgrocer.db"),
		StorageBackend:       storageBackend,
		StorageDir:           getEnv("STORAGE_DIR", "data/store"),
		DefaultCategory:      defaultCategory,
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		GroqAPIURL:           getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		Port:                 port,
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:             logLevel,
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIEndpoint:  getEnv("TELEGRAM_API_ENDPOINT", "https://api.telegram.org/bot%s/%s"),
		TelegramWebhookURL:   os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowUserIDs: allowIDs,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
