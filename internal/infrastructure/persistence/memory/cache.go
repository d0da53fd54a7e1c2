// Package memory provides in-process implementations of cache ports,
// used in tests and as a fallback when Redis is not configured.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY KEY-VALUE CACHE
// ══════════════════════════════════════════════════════════════════════════════

type entry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a thread-safe in-memory implementation of shared.KeyValueCache.
// Values are stored as JSON to mirror the serialization behavior of the
// Redis cache, so type round-trip bugs show up in tests too.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores a value under key, replacing any previous value.
// A zero TTL means the entry never expires.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return shared.ErrEmptyValue
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: expiresAt}
	c.mu.Unlock()

	return nil
}

// Get deserializes the value under key into dest.
// Returns shared.ErrCacheMiss when the key is absent or expired.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		return shared.ErrCacheMiss
	}

	return json.Unmarshal(e.data, dest)
}

// Delete removes keys from the cache. Missing keys are ignored.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Compile-time interface check.
var _ shared.KeyValueCache = (*Cache)(nil)
