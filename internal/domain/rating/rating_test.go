package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimmedMean_BelowTenSamplesTrimsNothing(t *testing.T) {
	// floor(5 * 0.10) == 0: nothing is cut, plain mean.
	values := []float64{10, 12, 11, 100, 9}

	assert.InDelta(t, 28.4, TrimmedMean(values, TrimFraction), 1e-9)
}

func TestTrimmedMean_TenSamplesCutsOnePerEnd(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1000}

	// 1 and 1000 are dropped; mean of 2..9.
	assert.InDelta(t, 5.5, TrimmedMean(values, TrimFraction), 1e-9)
}

func TestTrimmedMean_InputOrderIrrelevant(t *testing.T) {
	a := []float64{1000, 9, 1, 5, 3, 7, 2, 8, 4, 6}
	b := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1000}

	assert.InDelta(t, TrimmedMean(b, TrimFraction), TrimmedMean(a, TrimFraction), 1e-9)
}

func TestTrimmedMean_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = TrimmedMean(values, TrimFraction)

	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestTrimmedMean_Empty(t *testing.T) {
	assert.Equal(t, 0.0, TrimmedMean(nil, TrimFraction))
}

func TestComputeAverages_NilOnZeroRatings(t *testing.T) {
	assert.Nil(t, ComputeAverages(nil))
	assert.Nil(t, ComputeAverages([]*Rating{}))
}

func TestComputeAverages(t *testing.T) {
	ratings := []*Rating{
		{Difficulty: 4, Grindiness: 6, Fun: 8, Overall: 7, Hours: 30},
		{Difficulty: 6, Grindiness: 8, Fun: 6, Overall: 9, Hours: 50},
	}

	avg := ComputeAverages(ratings)
	require.NotNil(t, avg)

	assert.InDelta(t, 5.0, avg.Difficulty, 1e-9)
	assert.InDelta(t, 7.0, avg.Grindiness, 1e-9)
	assert.InDelta(t, 7.0, avg.Fun, 1e-9)
	assert.InDelta(t, 8.0, avg.Overall, 1e-9)
	assert.InDelta(t, 40.0, avg.Hours, 1e-9)
	assert.Equal(t, 2, avg.Count)
}

func TestComputeAverages_HoursOutlierSuppressed(t *testing.T) {
	ratings := make([]*Rating, 0, 10)
	for i := 1; i <= 9; i++ {
		ratings = append(ratings, &Rating{
			Difficulty: 5, Grindiness: 5, Fun: 5, Overall: 5,
			Hours: float64(i),
		})
	}
	// One AFK session should not drag the community estimate up.
	ratings = append(ratings, &Rating{
		Difficulty: 5, Grindiness: 5, Fun: 5, Overall: 5,
		Hours: 1000,
	})

	avg := ComputeAverages(ratings)
	require.NotNil(t, avg)
	assert.InDelta(t, 5.5, avg.Hours, 1e-9)
}

func TestScope_CacheKey(t *testing.T) {
	base := Scope{ConceptID: "c-123"}
	assert.Equal(t, "concept:averages:c-123", base.CacheKey())
	assert.True(t, base.IsBaseGame())

	dlc := Scope{ConceptID: "c-123", GroupID: "002"}
	assert.Equal(t, "concept:averages:c-123:group:002", dlc.CacheKey())
	assert.False(t, dlc.IsBaseGame())
}

func TestRating_Validate(t *testing.T) {
	valid := Rating{
		ProfileID: "p1", ConceptID: "c1",
		Difficulty: 5, Grindiness: 5, Fun: 5, Overall: 5, Hours: 40,
	}
	assert.NoError(t, valid.Validate())

	outOfRange := valid
	outOfRange.Difficulty = 11
	assert.ErrorIs(t, outOfRange.Validate(), ErrScoreOutOfRange)

	zeroScore := valid
	zeroScore.Fun = 0
	assert.ErrorIs(t, zeroScore.Validate(), ErrScoreOutOfRange)

	negativeHours := valid
	negativeHours.Hours = -1
	assert.ErrorIs(t, negativeHours.Validate(), ErrNegativeHours)

	noProfile := valid
	noProfile.ProfileID = ""
	assert.ErrorIs(t, noProfile.Validate(), ErrInvalidProfileID)
}
