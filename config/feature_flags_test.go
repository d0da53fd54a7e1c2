package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureLeaderboardDiffLogging, ""))
	assert.True(t, ff.IsEnabled(FeatureTimelineServerCache, ""))
	assert.False(t, ff.IsEnabled(FeatureExperimentalMetrics, ""))
}

func TestFeatureFlags_UnknownFeatureIsOff(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled("nonexistent.flag", ""))
	assert.False(t, ff.IsEnabled("nonexistent.flag", "profile-1"))
}

func TestFeatureFlags_EnvOverrideBool(t *testing.T) {
	t.Setenv("FEATURE_TIMELINE_SERVER_CACHE", "false")
	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureTimelineServerCache, ""))
	assert.False(t, ff.IsEnabled(FeatureTimelineServerCache, "profile-1"))
}

func TestFeatureFlags_EnvOverridePercent(t *testing.T) {
	t.Setenv("FEATURE_RATINGS_LIVE_REFRESH", "50")
	ff := LoadFeatureFlags()

	// Частичный rollout глобально считается выключенным.
	assert.False(t, ff.IsEnabled(FeatureRatingsLiveRefresh, ""))

	// Бакет профиля стабилен между вызовами.
	first := ff.IsEnabled(FeatureRatingsLiveRefresh, "profile-1")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureRatingsLiveRefresh, "profile-1"))
	}
}

func TestFeatureFlags_ProfileOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureTimelineServerCache))

	ff.SetProfileOverride("profile-1", FeatureTimelineServerCache, true)

	assert.True(t, ff.IsEnabled(FeatureTimelineServerCache, "profile-1"))
	assert.False(t, ff.IsEnabled(FeatureTimelineServerCache, "profile-2"))

	ff.ClearProfileOverrides("profile-1")
	assert.False(t, ff.IsEnabled(FeatureTimelineServerCache, "profile-1"))
}

func TestFeatureFlags_SetRolloutPercent(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.ErrorIs(t, ff.SetRolloutPercent("nonexistent.flag", 50), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureTimelineServerCache, 150), ErrInvalidRolloutPercent)

	require.NoError(t, ff.SetRolloutPercent(FeatureTimelineServerCache, 0))
	assert.False(t, ff.IsEnabled(FeatureTimelineServerCache, ""))

	require.NoError(t, ff.EnableFeature(FeatureTimelineServerCache))
	assert.True(t, ff.IsEnabled(FeatureTimelineServerCache, ""))
}

func TestFeatureFlags_GetAllFeaturesReturnsCopies(t *testing.T) {
	ff := LoadFeatureFlags()

	all := ff.GetAllFeatures()
	require.Contains(t, all, FeatureLeaderboardDiffLogging)

	all[FeatureLeaderboardDiffLogging].Enabled = false
	assert.True(t, ff.IsEnabled(FeatureLeaderboardDiffLogging, ""))
}
