package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a fast L1 (memory) into a shared L2
// (Redis). Writes go to both layers; L2 failures are not fatal as long
// as L1 succeeded.
type LayeredCache struct {
	l1 Cache
	l2 Cache
}

// NewLayeredCache combines two cache layers.
func NewLayeredCache(l1, l2 Cache) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2}
}

// Get checks L1 first, then falls back to L2 and promotes hits into L1.
func (c *LayeredCache) Get(ctx context.Context, key string) (interface{}, error) {
	if v, err := c.l1.Get(ctx, key); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	v, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Promote with a short TTL; L2 remains authoritative for expiry.
	_ = c.l1.Set(ctx, key, v, time.Minute)
	return v, nil
}

// Set writes to both layers.
func (c *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = c.l2.Set(ctx, key, value, ttl)
	return nil
}

// Delete removes the key from both layers.
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	err1 := c.l1.Delete(ctx, key)
	err2 := c.l2.Delete(ctx, key)
	if err1 != nil {
		return err1
	}
	return err2
}

// Close closes both layers.
func (c *LayeredCache) Close() error {
	err1 := c.l1.Close()
	err2 := c.l2.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
