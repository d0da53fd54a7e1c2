// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements badge.Repository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Definitions
// ─────────────────────────────────────────────────────────────────────────────

// DefinitionsBySeries returns the badge ladder of a series, tier ascending.
func (r *BadgeRepository) DefinitionsBySeries(ctx context.Context, seriesSlug string) ([]*badge.Definition, error) {
	query := `
		SELECT id, series_slug, series_name, tier, required_stages, concept_ids
		FROM badge_definitions
		WHERE series_slug = $1
		ORDER BY tier ASC
	`

	rows, err := r.conn.Query(ctx, query, seriesSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge definitions: %w", err)
	}
	defer rows.Close()

	var defs []*badge.Definition
	for rows.Next() {
		var d badge.Definition
		var tier int
		var conceptIDs []byte
		if err := rows.Scan(&d.ID, &d.SeriesSlug, &d.SeriesName, &tier, &d.RequiredStages, &conceptIDs); err != nil {
			return nil, fmt.Errorf("failed to scan badge definition: %w", err)
		}
		d.Tier = badge.Tier(tier)
		if err := json.Unmarshal(conceptIDs, &d.ConceptIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal concept ids: %w", err)
		}
		defs = append(defs, &d)
	}

	return defs, rows.Err()
}

// SeriesSlugs returns all known series.
func (r *BadgeRepository) SeriesSlugs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT series_slug FROM badge_definitions ORDER BY series_slug`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query series slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan series slug: %w", err)
		}
		slugs = append(slugs, slug)
	}

	return slugs, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress
// ─────────────────────────────────────────────────────────────────────────────

const progressColumns = `profile_id, badge_id, series_slug, tier, completed_concepts, required_stages`

func scanProgressRows(rows pgx.Rows) ([]badge.Progress, error) {
	defer rows.Close()

	var records []badge.Progress
	for rows.Next() {
		var p badge.Progress
		var tier int
		if err := rows.Scan(&p.ProfileID, &p.BadgeID, &p.SeriesSlug, &tier, &p.CompletedConcepts, &p.RequiredStages); err != nil {
			return nil, fmt.Errorf("failed to scan badge progress: %w", err)
		}
		p.Tier = badge.Tier(tier)
		records = append(records, p)
	}

	return records, rows.Err()
}

// ProgressByProfile returns all progress records of a profile.
func (r *BadgeRepository) ProgressByProfile(ctx context.Context, profileID string) ([]badge.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM badge_progress WHERE profile_id = $1`

	rows, err := r.conn.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge progress: %w", err)
	}
	return scanProgressRows(rows)
}

// ProgressBySeries returns the progress records of a profile in one series.
func (r *BadgeRepository) ProgressBySeries(ctx context.Context, profileID, seriesSlug string) ([]badge.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM badge_progress WHERE profile_id = $1 AND series_slug = $2`

	rows, err := r.conn.Query(ctx, query, profileID, seriesSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query series progress: %w", err)
	}
	return scanProgressRows(rows)
}

// FullyEarnedCount returns the number of fully earned badges of a profile.
// Awards are issued exactly once per completed badge, so counting awards
// is counting completions.
func (r *BadgeRepository) FullyEarnedCount(ctx context.Context, profileID string) (int, error) {
	query := `SELECT COUNT(*) FROM user_badge_awards WHERE profile_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count earned badges: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Awards
// ─────────────────────────────────────────────────────────────────────────────

func scanAwardRows(rows pgx.Rows) ([]*badge.Award, error) {
	defer rows.Close()

	var awards []*badge.Award
	for rows.Next() {
		var a badge.Award
		var tier int
		var earnedAt *time.Time
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.BadgeID, &a.SeriesSlug, &tier, &earnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge award: %w", err)
		}
		a.Tier = badge.Tier(tier)
		if earnedAt != nil {
			a.EarnedAt = *earnedAt
		}
		awards = append(awards, &a)
	}

	return awards, rows.Err()
}

// AwardsByProfile returns the badge awards of a profile.
func (r *BadgeRepository) AwardsByProfile(ctx context.Context, profileID string) ([]*badge.Award, error) {
	query := `
		SELECT id, profile_id, badge_id, series_slug, tier, earned_at
		FROM user_badge_awards
		WHERE profile_id = $1
		ORDER BY earned_at ASC NULLS LAST
	`

	rows, err := r.conn.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge awards: %w", err)
	}
	return scanAwardRows(rows)
}

// TopAwardsByTier returns up to limit awards of a profile with the
// highest tiers, for the timeline badge generator.
func (r *BadgeRepository) TopAwardsByTier(ctx context.Context, profileID string, limit int) ([]*badge.Award, error) {
	query := `
		SELECT id, profile_id, badge_id, series_slug, tier, earned_at
		FROM user_badge_awards
		WHERE profile_id = $1
		ORDER BY tier DESC, earned_at ASC NULLS LAST
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top badge awards: %w", err)
	}
	return scanAwardRows(rows)
}

// CreateAward issues an award unless it already exists. The awarding
// transaction locks the profile row so two concurrent sync runs cannot
// both pass the existence check; the unique constraint is the second
// line of defense. A duplicate is a no-op, not an error.
func (r *BadgeRepository) CreateAward(ctx context.Context, award *badge.Award) (bool, error) {
	created := false

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, award.ProfileID); err != nil {
			return fmt.Errorf("failed to lock profile: %w", err)
		}

		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM user_badge_awards WHERE profile_id = $1 AND badge_id = $2)`,
			award.ProfileID, award.BadgeID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check existing award: %w", err)
		}
		if exists {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_badge_awards (id, profile_id, badge_id, series_slug, tier, earned_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, award.ID, award.ProfileID, award.BadgeID, award.SeriesSlug, int(award.Tier), award.EarnedAt)
		if err != nil {
			if IsUniqueViolation(err) {
				return nil
			}
			return fmt.Errorf("failed to insert award: %w", err)
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// XP breakdowns (denormalized)
// ─────────────────────────────────────────────────────────────────────────────

// CachedBreakdown reads the denormalized XP breakdown of a profile.
// A missing row means zero XP, not an error.
func (r *BadgeRepository) CachedBreakdown(ctx context.Context, profileID string) (badge.Breakdown, error) {
	query := `
		SELECT total_xp, progress_xp, badge_xp
		FROM xp_breakdowns
		WHERE profile_id = $1
	`

	var b badge.Breakdown
	err := r.conn.QueryRow(ctx, query, profileID).Scan(&b.Total, &b.ProgressXP, &b.BadgeXP)
	if err != nil {
		if IsNoRows(err) {
			return badge.Breakdown{}, nil
		}
		return badge.Breakdown{}, fmt.Errorf("failed to get xp breakdown: %w", err)
	}

	return b, nil
}

const storeBreakdownSQL = `
	INSERT INTO xp_breakdowns (profile_id, total_xp, progress_xp, badge_xp, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (profile_id) DO UPDATE SET
		total_xp = EXCLUDED.total_xp,
		progress_xp = EXCLUDED.progress_xp,
		badge_xp = EXCLUDED.badge_xp,
		updated_at = EXCLUDED.updated_at
`

// StoreBreakdown writes the denormalized XP breakdown of one profile.
func (r *BadgeRepository) StoreBreakdown(ctx context.Context, profileID string, b badge.Breakdown) error {
	if _, err := r.conn.Exec(ctx, storeBreakdownSQL, profileID, b.Total, b.ProgressXP, b.BadgeXP); err != nil {
		return fmt.Errorf("failed to store xp breakdown: %w", err)
	}
	return nil
}

// StoreBreakdowns writes a batch of breakdowns in one round trip.
// Used by the leaderboard rebuild job for the whole population.
func (r *BadgeRepository) StoreBreakdowns(ctx context.Context, breakdowns map[string]badge.Breakdown) error {
	if len(breakdowns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for profileID, b := range breakdowns {
		batch.Queue(storeBreakdownSQL, profileID, b.Total, b.ProgressXP, b.BadgeXP)
	}

	results := r.conn.Pool().SendBatch(ctx, batch)
	defer results.Close()

	for range breakdowns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to store xp breakdowns batch: %w", err)
		}
	}

	return nil
}
