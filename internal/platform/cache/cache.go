// Package cache provides memory, Redis, and layered caches used for the
// pair index and reserve snapshots.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key is not present.
	ErrNotFound = errors.New("cache: key not found")
)

// Cache is the interface shared by all cache backends.
type Cache interface {
	// Get retrieves a value.
	Get(ctx context.Context, key string) (interface{}, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
