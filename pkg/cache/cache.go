// Package cache provides byte caches for compiled compositions.
//
// The pipeline caches the plain frame build of a label file, keyed by the
// file's content hash and the build options, so re-running translate or
// write on an unchanged file skips parsing and rasterization.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the key options;
// [ScopedKeyer] prefixes every key, which lets several services share one
// Redis database.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is how long compiled builds stay cached.
const DefaultTTL = 7 * 24 * time.Hour
