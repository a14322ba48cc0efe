package shopping

import (
	"context"

	"smart-grocer/internal/storage"
)

// Repository handles persistence of the live item list.
type Repository struct {
	gateway *storage.Gateway
}

// NewRepository creates a new item repository.
func NewRepository(g *storage.Gateway) *Repository {
	return &Repository{gateway: g}
}

// Load returns the stored list, or an empty list when none is stored.
func (r *Repository) Load(ctx context.Context) []Item {
	items := storage.Load(ctx, r.gateway, storage.KeyItems, []Item{})
	if items == nil {
		return []Item{}
	}
	return items
}

// Save replaces the stored list.
func (r *Repository) Save(ctx context.Context, items []Item) error {
	return storage.Save(ctx, r.gateway, storage.KeyItems, items)
}
