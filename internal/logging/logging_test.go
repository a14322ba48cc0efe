package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWithWriter(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWithWriter(&buf, slog.LevelWarn)

	slog.Info("hidden")
	slog.Warn("shown", "key", "smartgrocer_items_v1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info must be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "smartgrocer_items_v1") {
		t.Errorf("Expected warn record, got %q", out)
	}
}
