package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	key        string
	value      interface{}
	expiration time.Time
}

// MemoryCache is an in-process LRU cache with TTL expiry. It stores
// values as-is, so cached structs survive without serialization.
type MemoryCache struct {
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryCache creates an in-memory cache holding at most maxSize
// entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}

	c := &MemoryCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		stopCh:  make(chan struct{}),
	}

	go c.reapExpired()

	return c
}

// Get retrieves a value, treating expired entries as absent.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return nil, ErrNotFound
	}

	item := element.Value.(*memoryItem)
	if time.Now().After(item.expiration) {
		c.removeLocked(key)
		return nil, ErrNotFound
	}

	c.lru.MoveToFront(element)
	return item.value, nil
}

// Set stores a value, evicting the least recently used entry when full.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		item := element.Value.(*memoryItem)
		item.value = value
		item.expiration = time.Now().Add(ttl)
		c.lru.MoveToFront(element)
		return nil
	}

	if c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeLocked(oldest.Value.(*memoryItem).key)
		}
	}

	item := &memoryItem{key: key, value: value, expiration: time.Now().Add(ttl)}
	c.items[key] = c.lru.PushFront(item)
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
	return nil
}

// Close stops the background expiry sweep.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

func (c *MemoryCache) removeLocked(key string) {
	if element, ok := c.items[key]; ok {
		c.lru.Remove(element)
		delete(c.items, key)
	}
}

func (c *MemoryCache) reapExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, element := range c.items {
				if now.After(element.Value.(*memoryItem).expiration) {
					c.removeLocked(key)
				}
			}
			c.mu.Unlock()
		}
	}
}
