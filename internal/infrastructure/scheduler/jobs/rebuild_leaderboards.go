// Package jobs contains implementations of scheduled jobs for Plat Pursuit.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
	"github.com/HuntedCode/plat-pursuit/internal/domain/profile"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/internal/domain/trophy"
	"github.com/HuntedCode/plat-pursuit/pkg/retry"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardsJob recomputes every leaderboard snapshot from the
// trophy event store and the badge tables.
//
// Run order matters: denormalized trophy counters first, XP breakdowns
// second, boards last - so every board reads numbers from the same
// refresh cycle. Each snapshot is built fully in memory and then
// replaces the previous one in the store; a failure on one key never
// blocks the others.
type RebuildLeaderboardsJob struct {
	// Dependencies
	profileRepo    profile.Repository
	trophyRepo     trophy.Repository
	badgeRepo      badge.Repository
	xpCalc         *badge.Calculator
	source         leaderboard.Source
	store          leaderboard.SnapshotStore
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// Configuration
	config RebuildLeaderboardsConfig

	// State
	lastRebuildStats atomic.Value // *RebuildStats
}

// RebuildLeaderboardsConfig contains configuration for the rebuild job.
type RebuildLeaderboardsConfig struct {
	// RefreshTrophyCounts refreshes the denormalized trophy counters
	// before building boards. On only when this job owns the refresh.
	RefreshTrophyCounts bool

	// RecomputeXP recomputes the denormalized XP breakdowns for all
	// active profiles before building the XP boards.
	RecomputeXP bool

	// LogDiffs logs a rank-change summary per rebuilt key.
	LogDiffs bool

	// Timeout is the maximum duration for the whole rebuild run.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardsConfig returns sensible defaults.
func DefaultRebuildLeaderboardsConfig() RebuildLeaderboardsConfig {
	return RebuildLeaderboardsConfig{
		RefreshTrophyCounts: true,
		RecomputeXP:         true,
		LogDiffs:            true,
		Timeout:             10 * time.Minute,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	ProfilesScored   int
	SeriesProcessed  int
	SnapshotsSaved   int
	RankChangesFound int
	Errors           []error
}

// NewRebuildLeaderboardsJob creates a new rebuild job.
func NewRebuildLeaderboardsJob(
	profileRepo profile.Repository,
	trophyRepo trophy.Repository,
	badgeRepo badge.Repository,
	source leaderboard.Source,
	store leaderboard.SnapshotStore,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config RebuildLeaderboardsConfig,
) *RebuildLeaderboardsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}

	return &RebuildLeaderboardsJob{
		profileRepo:    profileRepo,
		trophyRepo:     trophyRepo,
		badgeRepo:      badgeRepo,
		xpCalc:         badge.NewCalculator(badgeRepo),
		source:         source,
		store:          store,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *RebuildLeaderboardsJob) Name() string {
	return "rebuild_leaderboards"
}

// Description returns a human-readable description.
func (j *RebuildLeaderboardsJob) Description() string {
	return "Refreshes trophy counters and XP breakdowns, then rebuilds all leaderboard snapshots"
}

// Run executes the rebuild job.
func (j *RebuildLeaderboardsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RebuildStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting rebuild_leaderboards job")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	if j.config.RefreshTrophyCounts {
		if err := j.trophyRepo.RefreshCachedCounts(ctx); err != nil {
			return fmt.Errorf("failed to refresh trophy counts: %w", err)
		}
	}

	if j.config.RecomputeXP {
		scored, err := j.recomputeBreakdowns(ctx)
		if err != nil {
			return fmt.Errorf("failed to recompute xp breakdowns: %w", err)
		}
		stats.ProfilesScored = scored
	}

	// Global boards
	j.rebuildProgressBoard(ctx, "", stats)
	j.rebuildXPBoard(ctx, "", stats)

	// Per-series boards
	slugs, err := j.source.SeriesSlugs(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, err)
		j.logger.Error("failed to list series", "error", err)
	}
	for _, slug := range slugs {
		j.rebuildEarnersBoard(ctx, slug, stats)
		j.rebuildProgressBoard(ctx, slug, stats)
		j.rebuildXPBoard(ctx, slug, stats)
		stats.SeriesProcessed++
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRebuildStats.Store(stats)

	j.logger.Info("rebuild_leaderboards job completed",
		"duration", stats.Duration.String(),
		"profiles_scored", stats.ProfilesScored,
		"series", stats.SeriesProcessed,
		"snapshots_saved", stats.SnapshotsSaved,
		"rank_changes", stats.RankChangesFound,
	)

	if len(stats.Errors) > 0 {
		return fmt.Errorf("rebuild completed with %d errors", len(stats.Errors))
	}

	return nil
}

// recomputeBreakdowns recalculates the XP breakdown of every active
// profile from the live progress records and writes them in one batch.
func (j *RebuildLeaderboardsJob) recomputeBreakdowns(ctx context.Context) (int, error) {
	profiles, err := j.profileRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active profiles: %w", err)
	}

	breakdowns := make(map[string]badge.Breakdown, len(profiles))
	for _, p := range profiles {
		b, err := j.xpCalc.TotalXPLive(ctx, p.ID)
		if err != nil {
			j.logger.Warn("failed to compute xp breakdown",
				"profile_id", p.ID,
				"error", err,
			)
			continue
		}
		breakdowns[p.ID] = b
	}

	if err := j.badgeRepo.StoreBreakdowns(ctx, breakdowns); err != nil {
		return 0, err
	}

	return len(breakdowns), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-board rebuilds
// ─────────────────────────────────────────────────────────────────────────────

func (j *RebuildLeaderboardsJob) rebuildEarnersBoard(ctx context.Context, seriesSlug string, stats *RebuildStats) {
	rows, err := j.source.EarnersRows(ctx, seriesSlug)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindEarners, seriesSlug, err)
		return
	}

	snapshot, err := leaderboard.NewEarnersSnapshot(uuid.New().String(), seriesSlug, rows)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindEarners, seriesSlug, err)
		return
	}

	j.saveSnapshot(ctx, snapshot, stats)
}

func (j *RebuildLeaderboardsJob) rebuildProgressBoard(ctx context.Context, seriesSlug string, stats *RebuildStats) {
	rows, err := j.source.ProgressRows(ctx, seriesSlug)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindProgress, seriesSlug, err)
		return
	}

	snapshot, err := leaderboard.NewProgressSnapshot(uuid.New().String(), seriesSlug, rows)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindProgress, seriesSlug, err)
		return
	}

	j.saveSnapshot(ctx, snapshot, stats)
}

func (j *RebuildLeaderboardsJob) rebuildXPBoard(ctx context.Context, seriesSlug string, stats *RebuildStats) {
	rows, err := j.source.XPRows(ctx, seriesSlug)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindXP, seriesSlug, err)
		return
	}

	snapshot, err := leaderboard.NewXPSnapshot(uuid.New().String(), seriesSlug, rows)
	if err != nil {
		j.recordBoardError(stats, leaderboard.KindXP, seriesSlug, err)
		return
	}

	j.saveSnapshot(ctx, snapshot, stats)
}

// saveSnapshot replaces the stored snapshot for the key, with retries
// on the cache write. The previous snapshot is loaded first purely for
// the diff summary; a load failure is not an error, it just means the
// whole board counts as new.
func (j *RebuildLeaderboardsJob) saveSnapshot(ctx context.Context, snapshot *leaderboard.Snapshot, stats *RebuildStats) {
	var prev *leaderboard.Snapshot
	if j.config.LogDiffs {
		prev, _ = j.store.Load(ctx, snapshot.Key)
	}

	err := retry.CacheRetrier().Do(ctx, func(ctx context.Context) error {
		if err := j.store.Save(ctx, snapshot); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		stats.Errors = append(stats.Errors, err)
		j.logger.Error("failed to save snapshot",
			"key", snapshot.Key,
			"error", err,
		)
		return
	}
	stats.SnapshotsSaved++

	if j.config.LogDiffs {
		diff := leaderboard.ComputeDiff(prev, snapshot)
		stats.RankChangesFound += len(diff.RankChanges)
		if diff.HasChanges() {
			j.logger.Info("leaderboard rebuilt",
				"key", snapshot.Key,
				"entries", snapshot.TotalEntries,
				"rank_changes", len(diff.RankChanges),
				"new_profiles", len(diff.NewProfiles),
				"removed_profiles", len(diff.RemovedProfiles),
			)
		}
	}

	event := shared.NewLeaderboardRebuiltEvent(snapshot.Key, snapshot.TotalEntries)
	if err := j.eventPublisher.Publish(event); err != nil {
		j.logger.Warn("failed to publish rebuild event",
			"key", snapshot.Key,
			"error", err,
		)
	}
}

func (j *RebuildLeaderboardsJob) recordBoardError(stats *RebuildStats, kind leaderboard.Kind, seriesSlug string, err error) {
	stats.Errors = append(stats.Errors, err)
	j.logger.Error("failed to rebuild board",
		"kind", string(kind),
		"series", seriesSlug,
		"error", err,
	)
}

// LastRebuildStats returns statistics from the last rebuild.
func (j *RebuildLeaderboardsJob) LastRebuildStats() *RebuildStats {
	stats := j.lastRebuildStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RebuildStats)
}
