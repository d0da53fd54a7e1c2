package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageMultiplier(t *testing.T) {
	assert.Equal(t, 250, StageMultiplier(1))
	assert.Equal(t, 75, StageMultiplier(2))
	assert.Equal(t, 250, StageMultiplier(3))
	assert.Equal(t, 75, StageMultiplier(4))
	assert.Equal(t, 0, StageMultiplier(0))
	assert.Equal(t, 0, StageMultiplier(5))
}

func TestProgressXP(t *testing.T) {
	records := []Progress{
		{ProfileID: "p1", BadgeID: "rac-1", SeriesSlug: "ratchet-and-clank", Tier: 1, CompletedConcepts: 5},
		{ProfileID: "p1", BadgeID: "rac-2", SeriesSlug: "ratchet-and-clank", Tier: 2, CompletedConcepts: 3},
	}

	// 5*250 + 3*75
	assert.Equal(t, 1475, ProgressXP(records))
}

func TestProgressXP_EmptyYieldsZero(t *testing.T) {
	assert.Equal(t, 0, ProgressXP(nil))
	assert.Equal(t, 0, ProgressXP([]Progress{}))
}

func TestBadgeXP(t *testing.T) {
	assert.Equal(t, 6000, BadgeXP(2))
	assert.Equal(t, 0, BadgeXP(0))
	assert.Equal(t, 0, BadgeXP(-1))
}

func TestComputeBreakdown_SpecExample(t *testing.T) {
	// Tier-1 progress with 5 completed concepts, tier-2 with 3,
	// plus 2 fully-earned badges overall.
	records := []Progress{
		{BadgeID: "rac-1", Tier: 1, CompletedConcepts: 5},
		{BadgeID: "rac-2", Tier: 2, CompletedConcepts: 3},
	}

	b := ComputeBreakdown(records, 2)

	assert.Equal(t, 1475, b.ProgressXP)
	assert.Equal(t, 6000, b.BadgeXP)
	assert.Equal(t, 7475, b.Total)
}

func TestComputeBreakdown_Additivity(t *testing.T) {
	records := []Progress{
		{BadgeID: "a", Tier: 1, CompletedConcepts: 2},
		{BadgeID: "b", Tier: 3, CompletedConcepts: 7},
		{BadgeID: "c", Tier: 4, CompletedConcepts: 1},
	}

	b := ComputeBreakdown(records, 3)
	assert.Equal(t, b.ProgressXP+b.BadgeXP, b.Total)
}

func TestComputeBreakdown_Idempotent(t *testing.T) {
	records := []Progress{
		{BadgeID: "a", Tier: 1, CompletedConcepts: 4},
		{BadgeID: "b", Tier: 2, CompletedConcepts: 2},
	}

	first := ComputeBreakdown(records, 1)
	second := ComputeBreakdown(records, 1)
	assert.Equal(t, first, second)
}

func TestComputeBreakdown_AbsentDataYieldsZero(t *testing.T) {
	b := ComputeBreakdown(nil, 0)
	assert.Equal(t, Breakdown{}, b)
}

func TestProgress_IsComplete(t *testing.T) {
	p := Progress{CompletedConcepts: 3, RequiredStages: 5}
	assert.False(t, p.IsComplete())

	p.CompletedConcepts = 5
	assert.True(t, p.IsComplete())

	p.CompletedConcepts = 6
	assert.True(t, p.IsComplete())
}

func TestDefinition_Validate(t *testing.T) {
	valid := Definition{ID: "rac-1", SeriesSlug: "ratchet-and-clank", Tier: 1, RequiredStages: 5}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.ID = ""
	assert.ErrorIs(t, missingID.Validate(), ErrInvalidBadgeID)

	badTier := valid
	badTier.Tier = 7
	assert.ErrorIs(t, badTier.Validate(), ErrInvalidTier)

	badStages := valid
	badStages.RequiredStages = 0
	assert.ErrorIs(t, badStages.Validate(), ErrInvalidRequiredStages)
}
