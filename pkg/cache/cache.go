// Package cache stores computed layouts and rendered artifacts so repeated
// requests for the same topology skip the work.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are derived by a [Keyer] from a content hash plus the options that
// influence the result, so a change in either produces a new key:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(topologyJSON), cache.LayoutKeyOpts{Orientation: "horizontal"})
//
// [ScopedKeyer] prefixes every key, which lets several tenants share one
// Redis instance.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
