package memory

import (
	"context"
	"errors"

	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY SNAPSHOT STORE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore is an in-process implementation of leaderboard.SnapshotStore.
// Snapshots never expire; each Save fully replaces the previous one under
// the same key. Boards built by another process are not visible, so this
// only serves single-process development setups and tests.
type SnapshotStore struct {
	cache *Cache
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{cache: NewCache()}
}

// Save stores a snapshot under its key.
func (s *SnapshotStore) Save(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	if snapshot == nil || snapshot.Key == "" {
		return shared.ErrEmptyValue
	}
	return s.cache.Set(ctx, snapshot.Key, snapshot, 0)
}

// Load reads a snapshot by its logical key.
// Returns leaderboard.ErrSnapshotNotFound when the key is absent.
func (s *SnapshotStore) Load(ctx context.Context, key string) (*leaderboard.Snapshot, error) {
	var snapshot leaderboard.Snapshot
	if err := s.cache.Get(ctx, key, &snapshot); err != nil {
		if errors.Is(err, shared.ErrCacheMiss) {
			return nil, leaderboard.ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

// Compile-time interface check.
var _ leaderboard.SnapshotStore = (*SnapshotStore)(nil)
