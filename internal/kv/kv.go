// Package kv provides the key-value persistence layer for state that
// outlives a session: the analyst case list and the theme preference.
package kv

import (
	"context"
)

// Fixed keys for persisted state.
const (
	KeyCases = "fraudsight:cases"
	KeyTheme = "fraudsight:prefs:theme"
)

// Store is the interface for key-value persistence backends
type Store interface {
	// Get returns the value for a key; ok is false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes the value for a key, replacing any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close closes the store.
	Close() error
}
