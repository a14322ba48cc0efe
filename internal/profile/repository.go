package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"smart-grocer/internal/storage"
)

// Repository persists the profile and the legacy budget key.
type Repository struct {
	gateway *storage.Gateway
}

// NewRepository creates a profile repository.
func NewRepository(g *storage.Gateway) *Repository {
	return &Repository{gateway: g}
}

// Load returns the stored profile merged over the defaults.
func (r *Repository) Load(ctx context.Context) Profile {
	raw, ok := r.gateway.LoadRaw(ctx, storage.KeyProfile)
	if !ok {
		return Default()
	}
	if !json.Valid(raw) {
		slog.Warn("Discarding corrupt profile", "key", storage.KeyProfile)
		return Default()
	}
	return Merge(raw)
}

// Save writes the profile.
func (r *Repository) Save(ctx context.Context, p Profile) error {
	return storage.Save(ctx, r.gateway, storage.KeyProfile, p)
}

// LoadBudget reads the legacy budget value, 0 when unset.
func (r *Repository) LoadBudget(ctx context.Context) float64 {
	raw, ok := r.gateway.LoadRaw(ctx, storage.KeyBudget)
	if !ok {
		return 0
	}
	return ParseBudget(string(raw))
}

// SaveBudget writes the legacy budget value as a bare number.
func (r *Repository) SaveBudget(ctx context.Context, v float64) error {
	if err := r.gateway.SaveRaw(ctx, storage.KeyBudget, []byte(FormatBudget(v))); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}
