// Package cache provides the key/value cache behind step resume and
// certificate memoization.
//
// A [Cache] stores opaque byte payloads under string keys with an optional
// time-to-live. Keys are produced by a [Keyer] so that every consumer agrees
// on how a step or a certificate lookup is named:
//
//   - step keys hash the rule, the input bucket and a digest of the input
//     file, so a step is replayed from cache only while its input is unchanged
//   - certificate keys hash the vertex count and the adjacency bytes
//
// Implementations:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: a mutex-guarded map, used for certificate memoization
//   - [NullCache]: stores nothing (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-payload cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
