package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCacheKey(t *testing.T) {
	key, err := CacheKey(KindProgress, "")
	require.NoError(t, err)
	assert.Equal(t, "lb_total_progress", key)

	key, err = CacheKey(KindXP, "")
	require.NoError(t, err)
	assert.Equal(t, "lb_total_xp", key)

	key, err = CacheKey(KindEarners, "ratchet-and-clank")
	require.NoError(t, err)
	assert.Equal(t, "lb_earners_ratchet-and-clank", key)

	key, err = CacheKey(KindProgress, "god-of-war")
	require.NoError(t, err)
	assert.Equal(t, "lb_progress_god-of-war", key)

	key, err = CacheKey(KindXP, "god-of-war")
	require.NoError(t, err)
	assert.Equal(t, "lb_community_xp_god-of-war", key)
}

func TestCacheKey_EarnersRequiresSeries(t *testing.T) {
	_, err := CacheKey(KindEarners, "")
	assert.ErrorIs(t, err, ErrSeriesRequired)
}

func TestCacheKey_UnknownKind(t *testing.T) {
	_, err := CacheKey(Kind("weekly"), "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Earners board
// ──────────────────────────────────────────────────────────────────────────────

func TestSortEarners_TierThenDateThenUsername(t *testing.T) {
	entries := []*EarnersEntry{
		{ProfileID: "p1", Username: "zoe", HighestTier: 2, EarnedAt: ts("2025-01-01T00:00:00Z")},
		{ProfileID: "p2", Username: "amy", HighestTier: 3, EarnedAt: ts("2025-06-01T00:00:00Z")},
		{ProfileID: "p3", Username: "bob", HighestTier: 3, EarnedAt: ts("2025-02-01T00:00:00Z")},
		{ProfileID: "p4", Username: "cat", HighestTier: 3, EarnedAt: ts("2025-02-01T00:00:00Z")},
	}

	SortEarners(entries)

	// Tier 3 first; earlier earned_at beats later; equal dates fall
	// back to username.
	assert.Equal(t, "p3", entries[0].ProfileID)
	assert.Equal(t, "p4", entries[1].ProfileID)
	assert.Equal(t, "p2", entries[2].ProfileID)
	assert.Equal(t, "p1", entries[3].ProfileID)
}

func TestSortEarners_NilEarnedAtSortsLast(t *testing.T) {
	entries := []*EarnersEntry{
		{ProfileID: "p1", Username: "amy", HighestTier: 2, EarnedAt: nil},
		{ProfileID: "p2", Username: "bob", HighestTier: 2, EarnedAt: ts("2025-03-01T00:00:00Z")},
	}

	SortEarners(entries)

	assert.Equal(t, "p2", entries[0].ProfileID)
	assert.Equal(t, "p1", entries[1].ProfileID)
}

func TestSortEarners_RanksAreStrict(t *testing.T) {
	// Fully identical stats still produce distinct consecutive ranks.
	entries := []*EarnersEntry{
		{ProfileID: "p2", Username: "same", HighestTier: 1, EarnedAt: ts("2025-01-01T00:00:00Z")},
		{ProfileID: "p1", Username: "same", HighestTier: 1, EarnedAt: ts("2025-01-01T00:00:00Z")},
		{ProfileID: "p3", Username: "same", HighestTier: 1, EarnedAt: ts("2025-01-01T00:00:00Z")},
	}

	SortEarners(entries)

	seen := make(map[Rank]bool)
	for i, e := range entries {
		assert.Equal(t, Rank(i+1), e.Rank)
		assert.False(t, seen[e.Rank], "rank %d assigned twice", e.Rank)
		seen[e.Rank] = true
	}
	// Last-resort profile id keeps the order deterministic.
	assert.Equal(t, "p1", entries[0].ProfileID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Progress board
// ──────────────────────────────────────────────────────────────────────────────

func TestSortProgress_CountTuple(t *testing.T) {
	entries := []*ProgressEntry{
		{ProfileID: "p1", Username: "amy", Platinum: 10, Gold: 5, Silver: 3, Bronze: 1},
		{ProfileID: "p2", Username: "bob", Platinum: 12, Gold: 1, Silver: 0, Bronze: 0},
		{ProfileID: "p3", Username: "cat", Platinum: 10, Gold: 7, Silver: 0, Bronze: 0},
	}

	SortProgress(entries)

	assert.Equal(t, "p2", entries[0].ProfileID)
	assert.Equal(t, "p3", entries[1].ProfileID)
	assert.Equal(t, "p1", entries[2].ProfileID)
	assert.Equal(t, Rank(1), entries[0].Rank)
	assert.Equal(t, Rank(2), entries[1].Rank)
	assert.Equal(t, Rank(3), entries[2].Rank)
}

func TestSortProgress_EarlierLastTrophyWinsTie(t *testing.T) {
	entries := []*ProgressEntry{
		{ProfileID: "p1", Username: "amy", Platinum: 5, LastTrophyAt: ts("2025-05-01T00:00:00Z")},
		{ProfileID: "p2", Username: "bob", Platinum: 5, LastTrophyAt: ts("2025-01-01T00:00:00Z")},
		{ProfileID: "p3", Username: "cat", Platinum: 5, LastTrophyAt: nil},
	}

	SortProgress(entries)

	assert.Equal(t, "p2", entries[0].ProfileID)
	assert.Equal(t, "p1", entries[1].ProfileID)
	assert.Equal(t, "p3", entries[2].ProfileID)
}

// ──────────────────────────────────────────────────────────────────────────────
// XP board
// ──────────────────────────────────────────────────────────────────────────────

func TestSortXP_TotalThenBadgesThenUsername(t *testing.T) {
	entries := []*XPEntry{
		{ProfileID: "p1", Username: "zoe", TotalXP: 7475, BadgeCount: 2},
		{ProfileID: "p2", Username: "amy", TotalXP: 9000, BadgeCount: 1},
		{ProfileID: "p3", Username: "bob", TotalXP: 7475, BadgeCount: 3},
		{ProfileID: "p4", Username: "ann", TotalXP: 7475, BadgeCount: 2},
	}

	SortXP(entries)

	assert.Equal(t, "p2", entries[0].ProfileID)
	assert.Equal(t, "p3", entries[1].ProfileID)
	assert.Equal(t, "p4", entries[2].ProfileID)
	assert.Equal(t, "p1", entries[3].ProfileID)
}

func TestNewXPSnapshot_DropsZeroXP(t *testing.T) {
	entries := []*XPEntry{
		{ProfileID: "p1", Username: "amy", TotalXP: 1475},
		{ProfileID: "p2", Username: "bob", TotalXP: 0},
		{ProfileID: "p3", Username: "cat", TotalXP: 250},
	}

	snap, err := NewXPSnapshot("snap-1", "", entries)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Count())
	assert.Equal(t, "lb_total_xp", snap.Key)
	for _, e := range snap.XP {
		assert.NotEqual(t, "p2", e.ProfileID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot
// ──────────────────────────────────────────────────────────────────────────────

func TestSnapshot_Paging(t *testing.T) {
	entries := make([]*ProgressEntry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, &ProgressEntry{
			ProfileID: string(rune('a' + i)),
			Username:  string(rune('a' + i)),
			Platinum:  10 - i,
		})
	}

	snap, err := NewProgressSnapshot("snap-1", "", entries)
	require.NoError(t, err)

	page := snap.ProgressPage(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, Rank(1), page[0].Rank)

	page = snap.ProgressPage(3, 2)
	require.Len(t, page, 1)
	assert.Equal(t, Rank(5), page[0].Rank)

	assert.Nil(t, snap.ProgressPage(4, 2))
	assert.Equal(t, 3, snap.TotalPages(2))
}

func TestSnapshot_ProfileRank(t *testing.T) {
	snap, err := NewXPSnapshot("snap-1", "", []*XPEntry{
		{ProfileID: "p1", Username: "amy", TotalXP: 100},
		{ProfileID: "p2", Username: "bob", TotalXP: 300},
	})
	require.NoError(t, err)

	assert.Equal(t, Rank(1), snap.ProfileRank("p2"))
	assert.Equal(t, Rank(2), snap.ProfileRank("p1"))
	assert.Equal(t, Rank(0), snap.ProfileRank("missing"))
}

func TestComputeDiff(t *testing.T) {
	oldSnap, err := NewXPSnapshot("snap-1", "", []*XPEntry{
		{ProfileID: "p1", Username: "amy", TotalXP: 100},
		{ProfileID: "p2", Username: "bob", TotalXP: 300},
		{ProfileID: "p3", Username: "cat", TotalXP: 50},
	})
	require.NoError(t, err)

	newSnap, err := NewXPSnapshot("snap-2", "", []*XPEntry{
		{ProfileID: "p1", Username: "amy", TotalXP: 500},
		{ProfileID: "p2", Username: "bob", TotalXP: 300},
		{ProfileID: "p4", Username: "dan", TotalXP: 10},
	})
	require.NoError(t, err)

	diff := ComputeDiff(oldSnap, newSnap)

	assert.True(t, diff.HasChanges())
	assert.Equal(t, 1, diff.RankChanges["p1"])
	assert.Equal(t, -1, diff.RankChanges["p2"])
	assert.Equal(t, []string{"p4"}, diff.NewProfiles)
	assert.Equal(t, []string{"p3"}, diff.RemovedProfiles)
}

func TestComputeDiff_NilOldSnapshot(t *testing.T) {
	newSnap, err := NewXPSnapshot("snap-1", "", []*XPEntry{
		{ProfileID: "p1", Username: "amy", TotalXP: 100},
	})
	require.NoError(t, err)

	diff := ComputeDiff(nil, newSnap)
	assert.Empty(t, diff.RankChanges)
	assert.Equal(t, []string{"p1"}, diff.NewProfiles)
}
