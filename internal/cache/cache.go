// Package cache provides the key-value snapshot cache used by the like path.
//
// The cache holds serialized User snapshots keyed by user ID. There is no
// transactional link to the record store: a Set after a store write is a
// best-effort synchronization step, and a cached snapshot may lag behind
// the store's current revision. Callers must treat a hit as "some past
// state", never as authoritative.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is not in the cache.
var ErrMiss = errors.New("cache: miss")

// Cache is a minimal key-value interface. Keys are strings, values are byte
// slices (JSON-serialized snapshots). A TTL of 0 means no expiry.
type Cache interface {
	// Get retrieves a value by key. Returns ErrMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given key and TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close closes the connection to the backend.
	Close() error
}
