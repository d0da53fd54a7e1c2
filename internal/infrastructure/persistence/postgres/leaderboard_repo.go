// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"fmt"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD SOURCE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardSource implements leaderboard.Source for PostgreSQL.
// It produces unranked population rows via aggregate queries; ordering
// and rank assignment stay in the domain.
type LeaderboardSource struct {
	conn *Connection
}

// NewLeaderboardSource creates a new LeaderboardSource.
func NewLeaderboardSource(conn *Connection) *LeaderboardSource {
	return &LeaderboardSource{conn: conn}
}

// EarnersRows returns one row per profile holding an award in the
// series: their highest tier and when they reached it.
func (s *LeaderboardSource) EarnersRows(ctx context.Context, seriesSlug string) ([]*leaderboard.EarnersEntry, error) {
	query := `
		SELECT DISTINCT ON (a.profile_id)
			a.profile_id, p.username, a.tier, a.earned_at
		FROM user_badge_awards a
		JOIN profiles p ON p.id = a.profile_id
		WHERE a.series_slug = $1
		ORDER BY a.profile_id, a.tier DESC, a.earned_at ASC NULLS LAST
	`

	rows, err := s.conn.Query(ctx, query, seriesSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query earners rows: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.EarnersEntry
	for rows.Next() {
		var e leaderboard.EarnersEntry
		if err := rows.Scan(&e.ProfileID, &e.Username, &e.HighestTier, &e.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan earners row: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// ProgressRows returns trophy counters for the population. The global
// board reads the denormalized trophy_counts fast path and includes
// zero-trophy profiles; a series board aggregates live over the earned
// events of that series' games only.
func (s *LeaderboardSource) ProgressRows(ctx context.Context, seriesSlug string) ([]*leaderboard.ProgressEntry, error) {
	var query string
	var args []interface{}

	if seriesSlug == "" {
		query = `
			SELECT p.id, p.username,
				   COALESCE(tc.platinum, 0),
				   COALESCE(tc.gold, 0),
				   COALESCE(tc.silver, 0),
				   COALESCE(tc.bronze, 0),
				   tc.last_trophy_at
			FROM profiles p
			LEFT JOIN trophy_counts tc ON tc.profile_id = p.id
			WHERE p.psn_linked
		`
	} else {
		query = `
			SELECT p.id, p.username,
				   COUNT(*) FILTER (WHERE et.grade = 'platinum'),
				   COUNT(*) FILTER (WHERE et.grade = 'gold'),
				   COUNT(*) FILTER (WHERE et.grade = 'silver'),
				   COUNT(*) FILTER (WHERE et.grade = 'bronze'),
				   MAX(et.earned_at)
			FROM earned_trophies et
			JOIN concepts c ON c.id = et.concept_id
			JOIN profiles p ON p.id = et.profile_id
			WHERE et.earned AND c.series_slug = $1
			GROUP BY p.id, p.username
		`
		args = append(args, seriesSlug)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress rows: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.ProgressEntry
	for rows.Next() {
		var e leaderboard.ProgressEntry
		if err := rows.Scan(
			&e.ProfileID,
			&e.Username,
			&e.Platinum,
			&e.Gold,
			&e.Silver,
			&e.Bronze,
			&e.LastTrophyAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// XPRows returns XP rows for the population. The global board reads the
// denormalized xp_breakdowns table written by the rebuild job; a series
// board recomputes stage XP over that series' progress records plus the
// full-badge bonus per award. Stage multipliers are passed in from the
// scoring constants so the SQL never drifts from the domain.
func (s *LeaderboardSource) XPRows(ctx context.Context, seriesSlug string) ([]*leaderboard.XPEntry, error) {
	var query string
	var args []interface{}

	if seriesSlug == "" {
		query = `
			SELECT p.id, p.username, xb.total_xp,
				   (SELECT COUNT(*) FROM user_badge_awards a WHERE a.profile_id = p.id)
			FROM xp_breakdowns xb
			JOIN profiles p ON p.id = xb.profile_id
			WHERE xb.total_xp > 0
		`
	} else {
		query = `
			SELECT p.id, p.username,
				   COALESCE(SUM(bp.completed_concepts * CASE bp.tier
						WHEN 1 THEN $2::INT
						WHEN 2 THEN $3::INT
						WHEN 3 THEN $4::INT
						WHEN 4 THEN $5::INT
						ELSE 0 END), 0)::INT
				   + (SELECT COUNT(*) FROM user_badge_awards a
					  WHERE a.profile_id = p.id AND a.series_slug = $1)::INT * $6::INT,
				   (SELECT COUNT(*) FROM user_badge_awards a
					WHERE a.profile_id = p.id AND a.series_slug = $1)
			FROM badge_progress bp
			JOIN profiles p ON p.id = bp.profile_id
			WHERE bp.series_slug = $1
			GROUP BY p.id, p.username
		`
		args = append(args,
			seriesSlug,
			badge.XPStageTier1,
			badge.XPStageTier2,
			badge.XPStageTier3,
			badge.XPStageTier4,
			badge.XPFullBadge,
		)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query xp rows: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.XPEntry
	for rows.Next() {
		var e leaderboard.XPEntry
		if err := rows.Scan(&e.ProfileID, &e.Username, &e.TotalXP, &e.BadgeCount); err != nil {
			return nil, fmt.Errorf("failed to scan xp row: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// SeriesSlugs returns the series that get per-series boards.
func (s *LeaderboardSource) SeriesSlugs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT series_slug FROM badge_definitions ORDER BY series_slug`

	rows, err := s.conn.Query(ctx, query)
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
