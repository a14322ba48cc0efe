// Package storage persists application records in a key-value store.
package storage

import (
	"context"
	"errors"
)

// Keys of the persisted records.
const (
	KeyItems   = "smartgrocer_items_v1"
	KeyProfile = "smartgrocer_user_v1"
	KeyHistory = "smartgrocer_history_v1"
	KeyBudget  = "smartgrocer_budget"
)

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Backend is a raw key-value store. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Get returns the stored payload, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the payload stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
