package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Rollout buckets are assigned by a consistent hash of the profile ID,
// so a profile keeps seeing the same behavior across requests.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	profileOverrides map[string]map[string]bool // profileID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Leaderboard Features ===
	FeatureLeaderboardDiffLogging = "leaderboard.diff_logging" // log rank changes per rebuilt key
	FeatureLeaderboardCommunityXP = "leaderboard.community_xp" // per-series community XP boards

	// === Timeline Features ===
	FeatureTimelineServerCache = "timeline.server_cache" // cache computed timelines in Redis

	// === Rating Features ===
	FeatureRatingsCommunityAverages = "ratings.community_averages" // batch recompute of rating averages
	FeatureRatingsLiveRefresh       = "ratings.live_refresh"       // refresh averages on the submit path

	// === Experimental Features ===
	FeatureExperimentalMetrics = "experimental.metrics" // /metrics endpoint
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		profileOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLeaderboardDiffLogging] = &Feature{
		Name:           FeatureLeaderboardDiffLogging,
		Description:    "Log rank-change summaries after snapshot rebuilds",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardCommunityXP] = &Feature{
		Name:           FeatureLeaderboardCommunityXP,
		Description:    "Build per-series community XP boards",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureTimelineServerCache] = &Feature{
		Name:           FeatureTimelineServerCache,
		Description:    "Cache computed profile timelines server-side",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRatingsCommunityAverages] = &Feature{
		Name:           FeatureRatingsCommunityAverages,
		Description:    "Periodic recompute of community rating averages",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRatingsLiveRefresh] = &Feature{
		Name:           FeatureRatingsLiveRefresh,
		Description:    "Refresh scope averages on rating submission",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureExperimentalMetrics] = &Feature{
		Name:           FeatureExperimentalMetrics,
		Description:    "Expose the /metrics endpoint",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_TIMELINE_SERVER_CACHE=false
// Example: FEATURE_RATINGS_LIVE_REFRESH=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "timeline.server_cache" -> "FEATURE_TIMELINE_SERVER_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given profile.
// An empty profile ID evaluates the global state of the flag: on only
// when the rollout is at 100%.
func (ff *FeatureFlags) IsEnabled(featureName, profileID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check profile overrides first
	if profileID != "" {
		if overrides, ok := ff.profileOverrides[profileID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		return false
	}

	if feature.RolloutPercent >= 100 {
		return true
	}

	if profileID == "" {
		return false
	}

	return ff.isInRollout(profileID, featureName, feature.RolloutPercent)
}

// isInRollout determines if a profile is in the rollout percentage.
// Uses consistent hashing so profiles stay in their bucket.
func (ff *FeatureFlags) isInRollout(profileID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(profileID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetProfileOverride sets a feature override for a specific profile.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetProfileOverride(profileID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.profileOverrides[profileID]; !ok {
		ff.profileOverrides[profileID] = make(map[string]bool)
	}
	ff.profileOverrides[profileID][featureName] = enabled
}

// ClearProfileOverrides removes all overrides for a profile.
func (ff *FeatureFlags) ClearProfileOverrides(profileID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.profileOverrides, profileID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
