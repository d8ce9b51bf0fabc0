// Package cache provides the key/value stores consumed by the fallback
// orchestrator for its cache-first shortcut.
package cache

import (
	"context"
	"time"
)

// Store is the cache contract the orchestrator depends on. Implementations
// must be safe for concurrent Get/Set from many cascades.
type Store interface {
	// Get returns the cached value for key, with ok=false on miss or expiry.
	Get(ctx context.Context, key string) (any, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
