// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"fmt"

	"github.com/HuntedCode/plat-pursuit/internal/domain/rating"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RatingRepository implements rating.Repository for PostgreSQL.
type RatingRepository struct {
	conn *Connection
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(conn *Connection) *RatingRepository {
	return &RatingRepository{conn: conn}
}

// Upsert creates or updates a submission keyed by (profile, concept, group).
func (r *RatingRepository) Upsert(ctx context.Context, rt *rating.Rating) error {
	if err := rt.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO rating_submissions (
			id, profile_id, concept_id, group_id,
			difficulty, grindiness, fun, overall, hours,
			submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (profile_id, concept_id, group_id) DO UPDATE SET
			difficulty = EXCLUDED.difficulty,
			grindiness = EXCLUDED.grindiness,
			fun = EXCLUDED.fun,
			overall = EXCLUDED.overall,
			hours = EXCLUDED.hours,
			updated_at = NOW()
	`

	_, err := r.conn.Exec(ctx, query,
		rt.ID,
		rt.ProfileID,
		rt.ConceptID,
		rt.GroupID,
		rt.Difficulty,
		rt.Grindiness,
		rt.Fun,
		rt.Overall,
		rt.Hours,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}

	return nil
}

// ByScope returns all submissions of one scope.
func (r *RatingRepository) ByScope(ctx context.Context, scope rating.Scope) ([]*rating.Rating, error) {
	query := `
		SELECT id, profile_id, concept_id, group_id,
			   difficulty, grindiness, fun, overall, hours,
			   submitted_at, updated_at
		FROM rating_submissions
		WHERE concept_id = $1 AND group_id = $2
	`

	rows, err := r.conn.Query(ctx, query, scope.ConceptID, scope.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*rating.Rating
	for rows.Next() {
		var rt rating.Rating
		if err := rows.Scan(
			&rt.ID,
			&rt.ProfileID,
			&rt.ConceptID,
			&rt.GroupID,
			&rt.Difficulty,
			&rt.Grindiness,
			&rt.Fun,
			&rt.Overall,
			&rt.Hours,
			&rt.SubmittedAt,
			&rt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rt)
	}

	return ratings, rows.Err()
}

// ByProfile returns the submission of one profile for a scope;
// nil without error when there is none.
func (r *RatingRepository) ByProfile(ctx context.Context, profileID string, scope rating.Scope) (*rating.Rating, error) {
	query := `
		SELECT id, profile_id, concept_id, group_id,
			   difficulty, grindiness, fun, overall, hours,
			   submitted_at, updated_at
		FROM rating_submissions
		WHERE profile_id = $1 AND concept_id = $2 AND group_id = $3
	`

	var rt rating.Rating
	err := r.conn.QueryRow(ctx, query, profileID, scope.ConceptID, scope.GroupID).Scan(
		&rt.ID,
		&rt.ProfileID,
		&rt.ConceptID,
		&rt.GroupID,
		&rt.Difficulty,
		&rt.Grindiness,
		&rt.Fun,
		&rt.Overall,
		&rt.Hours,
		&rt.SubmittedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &rt, nil
}

// Scopes returns every scope with at least one submission.
func (r *RatingRepository) Scopes(ctx context.Context) ([]rating.Scope, error) {
	query := `SELECT DISTINCT concept_id, group_id FROM rating_submissions ORDER BY concept_id, group_id`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating scopes: %w", err)
	}
	defer rows.Close()

	var scopes []rating.Scope
	for rows.Next() {
		var s rating.Scope
		if err := rows.Scan(&s.ConceptID, &s.GroupID); err != nil {
			return nil, fmt.Errorf("failed to scan rating scope: %w", err)
		}
		scopes = append(scopes, s)
	}

	return scopes, rows.Err()
}
