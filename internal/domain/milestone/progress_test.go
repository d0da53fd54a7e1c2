package milestone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func platinumLadder() []*Definition {
	return []*Definition{
		{ID: "plat-5", Name: "Collector", CriteriaType: CriteriaPlatinumCount, RequiredValue: 5},
		{ID: "plat-10", Name: "Hoarder", CriteriaType: CriteriaPlatinumCount, RequiredValue: 10},
		{ID: "plat-25", Name: "Legend", CriteriaType: CriteriaPlatinumCount, RequiredValue: 25},
	}
}

func TestRungFor_BelowFirstTier(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 3)

	assert.Equal(t, 0, p.CurrentTier)
	assert.Equal(t, 3, p.TotalTiers)
	assert.False(t, p.IsMaxTier)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, "plat-5", p.NextTier.MilestoneID)
	assert.Equal(t, 60, p.NextTier.ProgressPercentage)
}

func TestRungFor_ExactThresholdAwardsTier(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 10)

	assert.Equal(t, 2, p.CurrentTier)
	assert.False(t, p.IsMaxTier)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, "plat-25", p.NextTier.MilestoneID)
	assert.Equal(t, 40, p.NextTier.ProgressPercentage)
}

func TestRungFor_TierIsRankNotRequiredValue(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 12)

	// 12 platinums sit on the second rung even though the rung requires 10.
	assert.Equal(t, 2, p.CurrentTier)
	assert.Equal(t, 12, p.CompletedUnits)
}

func TestRungFor_MaxTier(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 25)

	assert.Equal(t, 3, p.CurrentTier)
	assert.True(t, p.IsMaxTier)
	assert.Nil(t, p.NextTier)
}

func TestRungFor_ValueBeyondHighestTier(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 400)

	assert.Equal(t, 3, p.CurrentTier)
	assert.True(t, p.IsMaxTier)
	assert.Nil(t, p.NextTier)
}

func TestRungFor_PercentageFloors(t *testing.T) {
	p := RungFor(platinumLadder(), CriteriaPlatinumCount, 7)

	require.NotNil(t, p.NextTier)
	// 7/10 -> 70, 24/25 would floor too: no rounding up.
	assert.Equal(t, 70, p.NextTier.ProgressPercentage)

	p = RungFor(platinumLadder(), CriteriaPlatinumCount, 24)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, 96, p.NextTier.ProgressPercentage)
}

func TestRungFor_EmptyLadder(t *testing.T) {
	p := RungFor(nil, CriteriaPlatinumCount, 9)

	assert.Equal(t, 0, p.CurrentTier)
	assert.Equal(t, 0, p.TotalTiers)
	assert.False(t, p.IsMaxTier)
	assert.Nil(t, p.NextTier)
}

func TestRungFor_TierMonotonicOverGrowingValue(t *testing.T) {
	ladder := platinumLadder()

	prev := 0
	for value := 0; value <= 30; value++ {
		p := RungFor(ladder, CriteriaPlatinumCount, value)
		assert.GreaterOrEqual(t, p.CurrentTier, prev, "tier must never decrease as value grows")
		prev = p.CurrentTier
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Calculator
// ──────────────────────────────────────────────────────────────────────────────

type stubRepo struct {
	ladder []*Definition
}

func (s *stubRepo) DefinitionsByCriteria(ctx context.Context, ct CriteriaType) ([]*Definition, error) {
	return s.ladder, nil
}

func (s *stubRepo) CriteriaTypes(ctx context.Context) ([]CriteriaType, error) { return nil, nil }

func (s *stubRepo) AwardsByProfile(ctx context.Context, profileID string) ([]*Award, error) {
	return nil, nil
}

func (s *stubRepo) AwardsByCriteria(ctx context.Context, profileID string, ct CriteriaType) ([]*Award, error) {
	return nil, nil
}

func (s *stubRepo) CreateAward(ctx context.Context, award *Award) (bool, error) {
	return true, nil
}

func fixedHandler(value int) ProgressHandler {
	return HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return value, nil
	})
}

func TestComputeProgress_LadderType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(CriteriaPlatinumCount, fixedHandler(12))

	calc := NewCalculator(&stubRepo{ladder: platinumLadder()}, registry)

	p, err := calc.ComputeProgress(context.Background(), "p1", CriteriaPlatinumCount)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentTier)
	assert.Equal(t, 3, p.TotalTiers)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, 48, p.NextTier.ProgressPercentage)
}

func TestComputeProgress_OneOffEarned(t *testing.T) {
	registry := NewRegistry()
	registry.Register(CriteriaPSNLinked, fixedHandler(1))

	calc := NewCalculator(&stubRepo{}, registry)

	p, err := calc.ComputeProgress(context.Background(), "p1", CriteriaPSNLinked)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentTier)
	assert.Equal(t, 0, p.TotalTiers)
	assert.True(t, p.IsMaxTier)
	assert.Nil(t, p.NextTier)
}

func TestComputeProgress_OneOffNotEarned(t *testing.T) {
	registry := NewRegistry()
	registry.Register(CriteriaIsPremium, fixedHandler(0))

	calc := NewCalculator(&stubRepo{}, registry)

	p, err := calc.ComputeProgress(context.Background(), "p1", CriteriaIsPremium)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentTier)
	assert.False(t, p.IsMaxTier)
}

func TestComputeProgress_UnknownCriteria(t *testing.T) {
	calc := NewCalculator(&stubRepo{}, NewRegistry())

	_, err := calc.ComputeProgress(context.Background(), "p1", CriteriaType("speedrun_count"))
	assert.ErrorIs(t, err, ErrUnknownCriteriaType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Default registry
// ──────────────────────────────────────────────────────────────────────────────

type stubStats struct {
	platinums int
	trophies  int
	seconds   int64
	completed int
	ageDays   int
	psnLinked bool
	premium   bool
}

func (s *stubStats) PlatinumCount(ctx context.Context, profileID string) (int, error) {
	return s.platinums, nil
}
func (s *stubStats) TrophyCount(ctx context.Context, profileID string) (int, error) {
	return s.trophies, nil
}
func (s *stubStats) PlaytimeSeconds(ctx context.Context, profileID string) (int64, error) {
	return s.seconds, nil
}
func (s *stubStats) CompletedGameCount(ctx context.Context, profileID string) (int, error) {
	return s.completed, nil
}
func (s *stubStats) AccountAgeDays(ctx context.Context, profileID string) (int, error) {
	return s.ageDays, nil
}
func (s *stubStats) PSNLinked(ctx context.Context, profileID string) (bool, error) {
	return s.psnLinked, nil
}
func (s *stubStats) IsPremium(ctx context.Context, profileID string) (bool, error) {
	return s.premium, nil
}
func (s *stubStats) MonthlyPlatinumCount(ctx context.Context, profileID string) (int, error) {
	return 0, nil
}
func (s *stubStats) MonthlyTrophyCount(ctx context.Context, profileID string) (int, error) {
	return 0, nil
}

func TestDefaultRegistry_PlaytimeConvertsToHours(t *testing.T) {
	registry := DefaultRegistry(&stubStats{seconds: 7250})

	h, ok := registry.Handler(CriteriaPlaytimeHours)
	require.True(t, ok)

	hours, err := h.Compute(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, hours)
}

func TestDefaultRegistry_BoolBecomesBinaryProgress(t *testing.T) {
	registry := DefaultRegistry(&stubStats{psnLinked: true})

	h, ok := registry.Handler(CriteriaPSNLinked)
	require.True(t, ok)

	v, err := h.Compute(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestDefaultRegistry_CoversAllCriteriaTypes(t *testing.T) {
	registry := DefaultRegistry(&stubStats{})

	for _, ct := range []CriteriaType{
		CriteriaPlatinumCount, CriteriaTrophyCount, CriteriaPlaytimeHours,
		CriteriaGamesCompleted, CriteriaAccountAgeDays, CriteriaPSNLinked,
		CriteriaIsPremium, CriteriaMonthlyPlatinum, CriteriaMonthlyTrophy,
	} {
		_, ok := registry.Handler(ct)
		assert.True(t, ok, "missing handler for %s", ct)
	}
}
