// Package jobs contains implementations of scheduled jobs for Plat Pursuit.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/rating"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE COMMUNITY STATS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RecomputeCommunityStatsJob recomputes the community rating averages
// for every scope that has at least one submission and writes them to
// the cache. The submit-rating command recomputes a single scope on the
// write path; this job is the safety net that repairs scopes whose
// cache write was lost or expired.
type RecomputeCommunityStatsJob struct {
	// Dependencies
	ratingRepo rating.Repository
	cache      shared.KeyValueCache
	logger     *slog.Logger

	// Configuration
	config RecomputeCommunityStatsConfig

	// State
	lastRunStats atomic.Value // *CommunityStatsRunStats
}

// RecomputeCommunityStatsConfig contains configuration for the job.
type RecomputeCommunityStatsConfig struct {
	// CacheTTL is the TTL for cached averages.
	CacheTTL time.Duration

	// Timeout is the maximum duration for the whole run.
	Timeout time.Duration
}

// DefaultRecomputeCommunityStatsConfig returns sensible defaults.
func DefaultRecomputeCommunityStatsConfig() RecomputeCommunityStatsConfig {
	return RecomputeCommunityStatsConfig{
		CacheTTL: 1 * time.Hour,
		Timeout:  5 * time.Minute,
	}
}

// CommunityStatsRunStats contains statistics from one run.
type CommunityStatsRunStats struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	Duration        time.Duration
	ScopesProcessed int
	ScopesSkipped   int
	Errors          []error
}

// NewRecomputeCommunityStatsJob creates a new recompute job.
func NewRecomputeCommunityStatsJob(
	ratingRepo rating.Repository,
	cache shared.KeyValueCache,
	logger *slog.Logger,
	config RecomputeCommunityStatsConfig,
) *RecomputeCommunityStatsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecomputeCommunityStatsJob{
		ratingRepo: ratingRepo,
		cache:      cache,
		logger:     logger,
		config:     config,
	}
}

// Name returns the job name.
func (j *RecomputeCommunityStatsJob) Name() string {
	return "recompute_community_stats"
}

// Description returns a human-readable description.
func (j *RecomputeCommunityStatsJob) Description() string {
	return "Recomputes community rating averages for all rated scopes and refreshes the cache"
}

// Run executes the recompute job.
func (j *RecomputeCommunityStatsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &CommunityStatsRunStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting recompute_community_stats job")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	scopes, err := j.ratingRepo.Scopes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rated scopes: %w", err)
	}

	for _, scope := range scopes {
		if err := j.recomputeScope(ctx, scope); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to recompute scope",
				"concept_id", scope.ConceptID,
				"group_id", scope.GroupID,
				"error", err,
			)
			continue
		}
		stats.ScopesProcessed++
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("recompute_community_stats job completed",
		"duration", stats.Duration.String(),
		"scopes", stats.ScopesProcessed,
	)

	if len(stats.Errors) > 0 {
		return fmt.Errorf("recompute completed with %d errors", len(stats.Errors))
	}

	return nil
}

// recomputeScope recalculates and caches the averages of one scope.
// A scope whose last submission disappeared yields nil averages; the
// cached value is deleted so readers fall through to the repository.
func (j *RecomputeCommunityStatsJob) recomputeScope(ctx context.Context, scope rating.Scope) error {
	ratings, err := j.ratingRepo.ByScope(ctx, scope)
	if err != nil {
		return err
	}

	averages := rating.ComputeAverages(ratings)
	if averages == nil {
		return j.cache.Delete(ctx, scope.CacheKey())
	}

	return j.cache.Set(ctx, scope.CacheKey(), averages, j.config.CacheTTL)
}

// LastRunStats returns statistics from the last run.
func (j *RecomputeCommunityStatsJob) LastRunStats() *CommunityStatsRunStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*CommunityStatsRunStats)
}
