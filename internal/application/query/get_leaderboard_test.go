package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWithXPBoard(t *testing.T, n int) leaderboard.SnapshotStore {
	t.Helper()

	entries := make([]*leaderboard.XPEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, &leaderboard.XPEntry{
			ProfileID:  fmt.Sprintf("profile-%02d", i),
			Username:   fmt.Sprintf("hunter%02d", i),
			TotalXP:    1000 - i*10,
			BadgeCount: 3,
		})
	}

	snapshot, err := leaderboard.NewXPSnapshot("snap-1", "", entries)
	require.NoError(t, err)

	store := memory.NewSnapshotStore()
	require.NoError(t, store.Save(context.Background(), snapshot))
	return store
}

func TestGetLeaderboard_FirstPage(t *testing.T) {
	h := NewGetLeaderboardHandler(storeWithXPBoard(t, 5))

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind:     string(leaderboard.KindXP),
		Page:     1,
		PageSize: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalEntries)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.XP, 2)
	assert.Equal(t, 1, result.XP[0].Rank)
	assert.Equal(t, "hunter00", result.XP[0].Username)
	assert.Equal(t, 2, result.XP[1].Rank)
}

func TestGetLeaderboard_SecondPageKeepsGlobalRanks(t *testing.T) {
	h := NewGetLeaderboardHandler(storeWithXPBoard(t, 5))

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind:     string(leaderboard.KindXP),
		Page:     2,
		PageSize: 2,
	})

	require.NoError(t, err)
	require.Len(t, result.XP, 2)
	// Ранги присвоены при сборке снапшота, страница их не пересчитывает.
	assert.Equal(t, 3, result.XP[0].Rank)
	assert.Equal(t, 4, result.XP[1].Rank)
}

func TestGetLeaderboard_PastLastPageIsEmpty(t *testing.T) {
	h := NewGetLeaderboardHandler(storeWithXPBoard(t, 5))

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind:     string(leaderboard.KindXP),
		Page:     9,
		PageSize: 2,
	})

	require.NoError(t, err)
	assert.Empty(t, result.XP)
	assert.Equal(t, 5, result.TotalEntries)
}

func TestGetLeaderboard_ProfileRank(t *testing.T) {
	h := NewGetLeaderboardHandler(storeWithXPBoard(t, 5))

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind:      string(leaderboard.KindXP),
		ProfileID: "profile-03",
	})

	require.NoError(t, err)
	assert.Equal(t, 4, result.ProfileRank)
}

func TestGetLeaderboard_MissingSnapshotIsEmptyResult(t *testing.T) {
	h := NewGetLeaderboardHandler(memory.NewSnapshotStore())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind: string(leaderboard.KindProgress),
	})

	require.NoError(t, err)
	assert.Zero(t, result.TotalEntries)
	assert.Empty(t, result.Progress)
}

func TestGetLeaderboard_UnknownKind(t *testing.T) {
	h := NewGetLeaderboardHandler(memory.NewSnapshotStore())

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{Kind: "podium"})

	assert.Error(t, err)
}

func TestGetLeaderboard_EarnersRequiresSeries(t *testing.T) {
	h := NewGetLeaderboardHandler(memory.NewSnapshotStore())

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Kind: string(leaderboard.KindEarners),
	})

	assert.Error(t, err)
}
