package cache

import (
	"context"
	"sync"
	"time"
)

type Item[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Cache is a keyed in-memory TTL cache. Expired items are dropped lazily on
// Get and in bulk by Cleanup.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]Item[V]
	now   func() time.Time
}

func New[V any]() *Cache[V] {
	return NewWithClock[V](time.Now)
}

func NewWithClock[V any](now func() time.Time) *Cache[V] {
	return &Cache[V]{
		items: make(map[string]Item[V]),
		now:   now,
	}
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item[V]{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}

	if !c.now().Before(item.ExpiresAt) {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur.ExpiresAt.Equal(item.ExpiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return item.Value, true
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Item[V])
}

// Cleanup drops every expired item and reports how many went.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, item := range c.items {
		if !now.Before(item.ExpiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// CleanupLoop calls Cleanup every interval until ctx is done.
func (c *Cache[V]) CleanupLoop(ctx context.Context, every time.Duration, onSweep func(removed, left int)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Cleanup()
			if onSweep != nil {
				onSweep(removed, c.Len())
			}
		}
	}
}
