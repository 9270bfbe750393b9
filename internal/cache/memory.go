package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache backed by sync.Map.
//
// Used when no REDIS_ADDR is configured (single-instance deployments,
// local development) and throughout the test suite. Entries honour their
// TTL lazily — an expired entry is dropped on the Get that finds it.
type MemoryCache struct {
	entries sync.Map // key string -> memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get retrieves a value by key. Returns ErrMiss for absent or expired keys.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, ErrMiss
	}
	entry := v.(memoryEntry)
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		c.entries.Delete(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores a value with the given key and TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}
	c.entries.Store(key, entry)
	return nil
}

// Close is a no-op for the in-memory backend.
func (c *MemoryCache) Close() error {
	return nil
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
