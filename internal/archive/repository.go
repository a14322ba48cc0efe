package archive

import (
	"context"

	"smart-grocer/internal/storage"
)

// Repository persists the snapshot history in insertion order.
type Repository struct {
	gateway *storage.Gateway
}

// NewRepository creates a history repository.
func NewRepository(g *storage.Gateway) *Repository {
	return &Repository{gateway: g}
}

// Load returns the stored history, empty when none is stored.
func (r *Repository) Load(ctx context.Context) []Snapshot {
	h := storage.Load(ctx, r.gateway, storage.KeyHistory, []Snapshot{})
	if h == nil {
		return []Snapshot{}
	}
	return h
}

// Save replaces the stored history.
func (r *Repository) Save(ctx context.Context, history []Snapshot) error {
	return storage.Save(ctx, r.gateway, storage.KeyHistory, history)
}
