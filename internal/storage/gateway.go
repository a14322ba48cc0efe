package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Gateway serializes records to JSON over a Backend. Reads never fail: an
// absent or corrupt record yields the caller's default.
type Gateway struct {
	backend Backend
}

// NewGateway creates a Gateway over backend.
func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Close closes the underlying backend.
func (g *Gateway) Close() error {
	return g.backend.Close()
}

// Load decodes the record stored under key, or returns def.
func Load[T any](ctx context.Context, g *Gateway, key string, def T) T {
	data, err := g.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("Failed to read record, using default", "key", key, "error", err)
		}
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("Corrupt record, using default", "key", key, "error", err)
		return def
	}
	return v
}

// Save encodes v and writes it under key. A failure is logged and returned
// for reporting; callers keep their in-memory state either way.
func Save[T any](ctx context.Context, g *Gateway, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to encode record", "key", key, "error", err)
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return g.SaveRaw(ctx, key, data)
}

// LoadRaw returns the payload under key and whether it was present.
func (g *Gateway) LoadRaw(ctx context.Context, key string) ([]byte, bool) {
	data, err := g.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("Failed to read record", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// SaveRaw writes data under key without encoding it.
func (g *Gateway) SaveRaw(ctx context.Context, key string, data []byte) error {
	if err := g.backend.Put(ctx, key, data); err != nil {
		slog.Warn("Failed to write record", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	slog.Debug("Record written", "key", key, "bytes", len(data))
	return nil
}
