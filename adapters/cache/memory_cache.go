package cache

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletauth/core"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the DataCache interface
type MemoryCache struct {
	entries map[string]entry
	resets  int
	mu      sync.RWMutex
}

// NewMemoryCache creates a new in-memory data cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
	}
}

// Get returns a cached value that has not expired
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, core.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return nil, core.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value under key; a zero ttl never expires
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Reset drops every cached entry
func (c *MemoryCache) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	c.resets++
	return nil
}

// Resets returns how many times the cache was reset
func (c *MemoryCache) Resets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.resets
}
