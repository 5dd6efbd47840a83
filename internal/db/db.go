// Package db defines the key-value store contract backing the embedding
// cache, with a rueidis implementation under db/redis.
package db

import (
	"context"
	"time"
)

// Store is the key-value storage contract.
type Store interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value at the given key.
	Set(ctx context.Context, key string, value []byte) error
	// SetWithTTL stores a value with an expiration.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// WaitForReady polls until the store responds or the timeout expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error
	// Close shuts down the client.
	Close()
}
