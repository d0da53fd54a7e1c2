// Package redis implements Redis caching for Plat Pursuit.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotCache implements leaderboard.SnapshotStore on Redis.
//
// Each snapshot is stored as a single JSON document under its logical
// key. A Save replaces the document atomically (last-writer-wins), so a
// rebuild that dies halfway never leaves a board half-updated: readers
// see either the previous snapshot or the new one, never a mix.
type SnapshotCache struct {
	cache *Cache
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(cache *Cache) *SnapshotCache {
	return &SnapshotCache{cache: cache}
}

// Save stores a snapshot under its key, replacing any previous one.
func (s *SnapshotCache) Save(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	if snapshot == nil {
		return ErrCacheNilValue
	}
	if snapshot.Key == "" {
		return ErrCacheKeyEmpty
	}

	if err := s.cache.Set(ctx, SnapshotKey(snapshot.Key), snapshot, TTLSnapshot); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snapshot.Key, err)
	}
	return nil
}

// Load reads a snapshot by its logical key.
// Returns leaderboard.ErrSnapshotNotFound when the key is absent.
func (s *SnapshotCache) Load(ctx context.Context, key string) (*leaderboard.Snapshot, error) {
	if key == "" {
		return nil, ErrCacheKeyEmpty
	}

	var snapshot leaderboard.Snapshot
	err := s.cache.Get(ctx, SnapshotKey(key), &snapshot)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, leaderboard.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	return &snapshot, nil
}

// Compile-time interface check.
var _ leaderboard.SnapshotStore = (*SnapshotCache)(nil)
