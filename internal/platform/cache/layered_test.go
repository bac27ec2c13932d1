package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheBasics(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.(string) != "v" {
		t.Errorf("got %v", v)
	}

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent key: got %v, want ErrNotFound", err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key: got %v, want ErrNotFound", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired key: got %v, want ErrNotFound", err)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(3)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), i, time.Minute)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	if _, err := c.Get(ctx, "k0"); err != nil {
		t.Fatalf("Get k0 failed: %v", err)
	}

	c.Set(ctx, "k3", 3, time.Minute)

	if _, err := c.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("k1 should have been evicted, got %v", err)
	}
	if _, err := c.Get(ctx, "k0"); err != nil {
		t.Errorf("recently used k0 evicted: %v", err)
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	l1 := NewMemoryCache(10)
	defer l1.Close()
	l2 := NewMemoryCache(10)
	defer l2.Close()

	layered := NewLayeredCache(l1, l2)
	ctx := context.Background()

	// Seed L2 only, simulating a fresh process against a warm shared
	// layer.
	if err := l2.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("seeding L2 failed: %v", err)
	}

	v, err := layered.Get(ctx, "k")
	if err != nil {
		t.Fatalf("layered Get failed: %v", err)
	}
	if v.(string) != "v" {
		t.Errorf("got %v", v)
	}

	// The hit must have been promoted into L1.
	if _, err := l1.Get(ctx, "k"); err != nil {
		t.Errorf("value not promoted to L1: %v", err)
	}
}

func TestLayeredCacheWritesBothLayers(t *testing.T) {
	l1 := NewMemoryCache(10)
	defer l1.Close()
	l2 := NewMemoryCache(10)
	defer l2.Close()

	layered := NewLayeredCache(l1, l2)
	ctx := context.Background()

	if err := layered.Set(ctx, "k", 42, time.Minute); err != nil {
		t.Fatalf("layered Set failed: %v", err)
	}

	if _, err := l1.Get(ctx, "k"); err != nil {
		t.Errorf("L1 missing value: %v", err)
	}
	if _, err := l2.Get(ctx, "k"); err != nil {
		t.Errorf("L2 missing value: %v", err)
	}

	if err := layered.Delete(ctx, "k"); err != nil {
		t.Fatalf("layered Delete failed: %v", err)
	}
	if _, err := l2.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete did not reach L2: %v", err)
	}
}
