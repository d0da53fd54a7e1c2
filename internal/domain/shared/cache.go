// Package shared contains common domain types, errors, events, and ports
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// KeyValueCache is the port every aggregator sees instead of a concrete
// cache backend. Keys are independent strings; values are plain
// JSON-serializable structures, never live model instances. A Set fully
// replaces the previous value under the key (last-writer-wins), which is
// what makes snapshot recomputes safe without cross-key transactions.
type KeyValueCache interface {
	// Get deserializes the value under key into dest.
	// Returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value under key with the given TTL, replacing any
	// previous value atomically.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
