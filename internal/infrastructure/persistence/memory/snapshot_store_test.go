package memory

import (
	"context"
	"testing"

	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snapshot, err := leaderboard.NewXPSnapshot("snap-1", "", []*leaderboard.XPEntry{
		{ProfileID: "p1", Username: "hunter", TotalXP: 120, BadgeCount: 1},
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx, snapshot.Key)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Key, loaded.Key)
	require.Len(t, loaded.XP, 1)
	assert.Equal(t, "p1", loaded.XP[0].ProfileID)
}

func TestSnapshotStore_MissReturnsNotFound(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.Load(context.Background(), "leaderboard:total_xp")
	assert.ErrorIs(t, err, leaderboard.ErrSnapshotNotFound)
}

func TestSnapshotStore_SaveReplacesPrevious(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	first, err := leaderboard.NewXPSnapshot("snap-1", "", []*leaderboard.XPEntry{
		{ProfileID: "p1", Username: "hunter", TotalXP: 120},
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, first))

	second, err := leaderboard.NewXPSnapshot("snap-2", "", []*leaderboard.XPEntry{
		{ProfileID: "p1", Username: "hunter", TotalXP: 120},
		{ProfileID: "p2", Username: "rival", TotalXP: 200},
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, second.Key)
	require.NoError(t, err)
	assert.Equal(t, "snap-2", loaded.ID)
	assert.Equal(t, 2, loaded.TotalEntries)
}

func TestSnapshotStore_RejectsNilAndEmptyKey(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, nil))
	assert.Error(t, store.Save(ctx, &leaderboard.Snapshot{}))
}
