// Package cache provides a small TTL cache for upstream responses, keyed by
// the fully-resolved request URL.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is safe for concurrent use. Expiry is checked on read; there is no
// background sweeper. Set always overwrites.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, or false if the key is absent or the
// entry has outlived the TTL.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: v, storedAt: time.Now()}
}
