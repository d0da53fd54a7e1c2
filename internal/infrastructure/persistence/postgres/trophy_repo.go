// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/trophy"
	"github.com/HuntedCode/plat-pursuit/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TROPHY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TrophyRepository implements trophy.Repository for PostgreSQL.
// earned_trophies is the event store; trophy_counts is the denormalized
// fast path refreshed by batch jobs.
type TrophyRepository struct {
	conn *Connection
}

// NewTrophyRepository creates a new TrophyRepository.
func NewTrophyRepository(conn *Connection) *TrophyRepository {
	return &TrophyRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Event store writes
// ─────────────────────────────────────────────────────────────────────────────

// Upsert creates or updates an earned-trophy event keyed by (profile, trophy).
func (r *TrophyRepository) Upsert(ctx context.Context, event *trophy.EarnedTrophyEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO earned_trophies (
			profile_id, trophy_id, concept_id, group_id, grade,
			earned, earned_at, earned_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (profile_id, trophy_id) DO UPDATE SET
			grade = EXCLUDED.grade,
			earned = EXCLUDED.earned,
			earned_at = EXCLUDED.earned_at,
			earned_rate = EXCLUDED.earned_rate
	`

	_, err := r.conn.Exec(ctx, query,
		event.ProfileID,
		event.TrophyID,
		event.ConceptID,
		event.GroupID,
		string(event.Grade),
		event.Earned,
		event.EarnedAt,
		event.EarnedRate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert earned trophy: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Event store reads
// ─────────────────────────────────────────────────────────────────────────────

// EarnedEvents returns all earned trophies of a profile.
func (r *TrophyRepository) EarnedEvents(ctx context.Context, profileID string) ([]*trophy.EarnedTrophyEvent, error) {
	query := `
		SELECT profile_id, trophy_id, concept_id, group_id, grade,
			   earned, earned_at, earned_rate
		FROM earned_trophies
		WHERE profile_id = $1 AND earned
	`

	rows, err := r.conn.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earned trophies: %w", err)
	}
	defer rows.Close()

	var events []*trophy.EarnedTrophyEvent
	for rows.Next() {
		var e trophy.EarnedTrophyEvent
		var grade string
		if err := rows.Scan(
			&e.ProfileID,
			&e.TrophyID,
			&e.ConceptID,
			&e.GroupID,
			&grade,
			&e.Earned,
			&e.EarnedAt,
			&e.EarnedRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan earned trophy: %w", err)
		}
		e.Grade = trophy.Grade(grade)
		events = append(events, &e)
	}

	return events, rows.Err()
}

// CachedCounts returns the denormalized per-grade counters of a profile.
// A missing row means zero counts, not an error.
func (r *TrophyRepository) CachedCounts(ctx context.Context, profileID string) (trophy.Counts, error) {
	query := `
		SELECT platinum, gold, silver, bronze, last_trophy_at
		FROM trophy_counts
		WHERE profile_id = $1
	`

	var c trophy.Counts
	err := r.conn.QueryRow(ctx, query, profileID).Scan(
		&c.Platinum,
		&c.Gold,
		&c.Silver,
		&c.Bronze,
		&c.LastTrophyAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return trophy.Counts{}, nil
		}
		return trophy.Counts{}, fmt.Errorf("failed to get cached counts: %w", err)
	}

	return c, nil
}

// CountsLive recounts the per-grade counters straight from the event store.
func (r *TrophyRepository) CountsLive(ctx context.Context, profileID string) (trophy.Counts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE grade = 'platinum'),
			COUNT(*) FILTER (WHERE grade = 'gold'),
			COUNT(*) FILTER (WHERE grade = 'silver'),
			COUNT(*) FILTER (WHERE grade = 'bronze'),
			MAX(earned_at)
		FROM earned_trophies
		WHERE profile_id = $1 AND earned
	`

	var c trophy.Counts
	err := r.conn.QueryRow(ctx, query, profileID).Scan(
		&c.Platinum,
		&c.Gold,
		&c.Silver,
		&c.Bronze,
		&c.LastTrophyAt,
	)
	if err != nil {
		return trophy.Counts{}, fmt.Errorf("failed to recount trophies: %w", err)
	}

	return c, nil
}

// RefreshCachedCounts rebuilds trophy_counts for the whole population
// from the event store in one statement.
func (r *TrophyRepository) RefreshCachedCounts(ctx context.Context) error {
	query := `
		INSERT INTO trophy_counts (profile_id, platinum, gold, silver, bronze, last_trophy_at, updated_at)
		SELECT
			profile_id,
			COUNT(*) FILTER (WHERE grade = 'platinum'),
			COUNT(*) FILTER (WHERE grade = 'gold'),
			COUNT(*) FILTER (WHERE grade = 'silver'),
			COUNT(*) FILTER (WHERE grade = 'bronze'),
			MAX(earned_at),
			NOW()
		FROM earned_trophies
		WHERE earned
		GROUP BY profile_id
		ON CONFLICT (profile_id) DO UPDATE SET
			platinum = EXCLUDED.platinum,
			gold = EXCLUDED.gold,
			silver = EXCLUDED.silver,
			bronze = EXCLUDED.bronze,
			last_trophy_at = EXCLUDED.last_trophy_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to refresh cached counts: %w", err)
	}
	return nil
}

// MonthlyCounts returns per-grade counters within the UTC calendar month
// containing from.
func (r *TrophyRepository) MonthlyCounts(ctx context.Context, profileID string, from time.Time) (trophy.Counts, error) {
	start := timeutil.StartOfMonth(from)
	end := timeutil.EndOfMonth(from)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE grade = 'platinum'),
			COUNT(*) FILTER (WHERE grade = 'gold'),
			COUNT(*) FILTER (WHERE grade = 'silver'),
			COUNT(*) FILTER (WHERE grade = 'bronze'),
			MAX(earned_at)
		FROM earned_trophies
		WHERE profile_id = $1 AND earned
		  AND earned_at >= $2 AND earned_at <= $3
	`

	var c trophy.Counts
	err := r.conn.QueryRow(ctx, query, profileID, start, end).Scan(
		&c.Platinum,
		&c.Gold,
		&c.Silver,
		&c.Bronze,
		&c.LastTrophyAt,
	)
	if err != nil {
		return trophy.Counts{}, fmt.Errorf("failed to count monthly trophies: %w", err)
	}

	return c, nil
}

// PlaytimeSeconds returns the total reported playtime of a profile.
func (r *TrophyRepository) PlaytimeSeconds(ctx context.Context, profileID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(seconds), 0)
		FROM profile_playtimes
		WHERE profile_id = $1
	`

	var seconds int64
	if err := r.conn.QueryRow(ctx, query, profileID).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("failed to sum playtime: %w", err)
	}
	return seconds, nil
}

// CompletedConceptCount returns the number of games with 100% of
// trophies earned.
func (r *TrophyRepository) CompletedConceptCount(ctx context.Context, profileID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM (
			SELECT et.concept_id
			FROM earned_trophies et
			JOIN concepts c ON c.id = et.concept_id
			WHERE et.profile_id = $1 AND et.earned AND c.trophy_count > 0
			GROUP BY et.concept_id, c.trophy_count
			HAVING COUNT(*) >= c.trophy_count
		) completed
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed concepts: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Timeline lookups
// ─────────────────────────────────────────────────────────────────────────────

// FirstEarned returns the earliest dated earned trophy of a profile.
// Returns nil without error when the profile has none.
func (r *TrophyRepository) FirstEarned(ctx context.Context, profileID string) (*trophy.EarnedTrophyEvent, error) {
	query := `
		SELECT profile_id, trophy_id, concept_id, group_id, grade,
			   earned, earned_at, earned_rate
		FROM earned_trophies
		WHERE profile_id = $1 AND earned AND earned_at IS NOT NULL
		ORDER BY earned_at ASC
		LIMIT 1
	`

	var e trophy.EarnedTrophyEvent
	var grade string
	err := r.conn.QueryRow(ctx, query, profileID).Scan(
		&e.ProfileID,
		&e.TrophyID,
		&e.ConceptID,
		&e.GroupID,
		&grade,
		&e.Earned,
		&e.EarnedAt,
		&e.EarnedRate,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get first earned trophy: %w", err)
	}

	e.Grade = trophy.Grade(grade)
	return &e, nil
}

// platinumQuery selects dated platinums of a profile with the game name
// and the first-trophy-to-platinum completion time in seconds.
const platinumQuery = `
	SELECT et.profile_id, et.concept_id, c.name, et.earned_at, et.earned_rate,
		   EXTRACT(EPOCH FROM (et.earned_at - (
			   SELECT MIN(e2.earned_at)
			   FROM earned_trophies e2
			   WHERE e2.profile_id = et.profile_id
				 AND e2.concept_id = et.concept_id
				 AND e2.earned AND e2.earned_at IS NOT NULL
		   )))::BIGINT AS completion_seconds
	FROM earned_trophies et
	JOIN concepts c ON c.id = et.concept_id
	WHERE et.profile_id = $1 AND et.earned
	  AND et.grade = 'platinum' AND et.earned_at IS NOT NULL
`

// scanPlatinum reads a single platinumQuery row; nil on no rows.
func (r *TrophyRepository) scanPlatinum(ctx context.Context, query, profileID string) (*trophy.PlatinumInfo, error) {
	var info trophy.PlatinumInfo
	var completionSeconds int64
	err := r.conn.QueryRow(ctx, query, profileID).Scan(
		&info.ProfileID,
		&info.ConceptID,
		&info.ConceptName,
		&info.EarnedAt,
		&info.EarnedRate,
		&completionSeconds,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get platinum info: %w", err)
	}

	info.Completion = time.Duration(completionSeconds) * time.Second
	return &info, nil
}

// FirstPlatinum returns the earliest platinum of a profile.
func (r *TrophyRepository) FirstPlatinum(ctx context.Context, profileID string) (*trophy.PlatinumInfo, error) {
	return r.scanPlatinum(ctx, platinumQuery+` ORDER BY et.earned_at ASC LIMIT 1`, profileID)
}

// FastestPlatinum returns the platinum with the shortest completion time.
func (r *TrophyRepository) FastestPlatinum(ctx context.Context, profileID string) (*trophy.PlatinumInfo, error) {
	return r.scanPlatinum(ctx, platinumQuery+` ORDER BY completion_seconds ASC LIMIT 1`, profileID)
}

// RarestPlatinum returns the platinum with the lowest earned rate.
func (r *TrophyRepository) RarestPlatinum(ctx context.Context, profileID string) (*trophy.PlatinumInfo, error) {
	return r.scanPlatinum(ctx, platinumQuery+` ORDER BY et.earned_rate ASC LIMIT 1`, profileID)
}
