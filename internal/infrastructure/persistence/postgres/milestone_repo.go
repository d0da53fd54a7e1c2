// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"fmt"

	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MilestoneRepository implements milestone.Repository for PostgreSQL.
type MilestoneRepository struct {
	conn *Connection
}

// NewMilestoneRepository creates a new MilestoneRepository.
func NewMilestoneRepository(conn *Connection) *MilestoneRepository {
	return &MilestoneRepository{conn: conn}
}

// DefinitionsByCriteria returns the ladder of one criteria type,
// required value ascending.
func (r *MilestoneRepository) DefinitionsByCriteria(ctx context.Context, criteriaType milestone.CriteriaType) ([]*milestone.Definition, error) {
	query := `
		SELECT id, name, criteria_type, required_value
		FROM milestone_definitions
		WHERE criteria_type = $1
		ORDER BY required_value ASC
	`

	rows, err := r.conn.Query(ctx, query, string(criteriaType))
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone definitions: %w", err)
	}
	defer rows.Close()

	var defs []*milestone.Definition
	for rows.Next() {
		var d milestone.Definition
		var ct string
		if err := rows.Scan(&d.ID, &d.Name, &ct, &d.RequiredValue); err != nil {
			return nil, fmt.Errorf("failed to scan milestone definition: %w", err)
		}
		d.CriteriaType = milestone.CriteriaType(ct)
		defs = append(defs, &d)
	}

	return defs, rows.Err()
}

// CriteriaTypes returns all criteria types that have definitions.
func (r *MilestoneRepository) CriteriaTypes(ctx context.Context) ([]milestone.CriteriaType, error) {
	query := `SELECT DISTINCT criteria_type FROM milestone_definitions ORDER BY criteria_type`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria types: %w", err)
	}
	defer rows.Close()

	var types []milestone.CriteriaType
	for rows.Next() {
		var ct string
		if err := rows.Scan(&ct); err != nil {
			return nil, fmt.Errorf("failed to scan criteria type: %w", err)
		}
		types = append(types, milestone.CriteriaType(ct))
	}

	return types, rows.Err()
}

func scanMilestoneAwards(rows pgx.Rows) ([]*milestone.Award, error) {
	defer rows.Close()

	var awards []*milestone.Award
	for rows.Next() {
		var a milestone.Award
		var ct string
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.MilestoneID, &ct, &a.RequiredValue, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan milestone award: %w", err)
		}
		a.CriteriaType = milestone.CriteriaType(ct)
		awards = append(awards, &a)
	}

	return awards, rows.Err()
}

// AwardsByProfile returns all milestone awards of a profile.
func (r *MilestoneRepository) AwardsByProfile(ctx context.Context, profileID string) ([]*milestone.Award, error) {
	query := `
		SELECT id, profile_id, milestone_id, criteria_type, required_value, earned_at
		FROM user_milestone_awards
		WHERE profile_id = $1
		ORDER BY earned_at ASC
	`

	rows, err := r.conn.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone awards: %w", err)
	}
	return scanMilestoneAwards(rows)
}

// AwardsByCriteria returns the milestone awards of a profile for one
// criteria type, required value ascending.
func (r *MilestoneRepository) AwardsByCriteria(ctx context.Context, profileID string, criteriaType milestone.CriteriaType) ([]*milestone.Award, error) {
	query := `
		SELECT id, profile_id, milestone_id, criteria_type, required_value, earned_at
		FROM user_milestone_awards
		WHERE profile_id = $1 AND criteria_type = $2
		ORDER BY required_value ASC
	`

	rows, err := r.conn.Query(ctx, query, profileID, string(criteriaType))
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria awards: %w", err)
	}
	return scanMilestoneAwards(rows)
}

// CreateAward issues a milestone award unless it already exists.
// Same locking discipline as badge awards: profile row lock plus the
// unique constraint; a duplicate is a no-op.
func (r *MilestoneRepository) CreateAward(ctx context.Context, award *milestone.Award) (bool, error) {
	created := false

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, award.ProfileID); err != nil {
			return fmt.Errorf("failed to lock profile: %w", err)
		}

		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM user_milestone_awards WHERE profile_id = $1 AND milestone_id = $2)`,
			award.ProfileID, award.MilestoneID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check existing award: %w", err)
		}
		if exists {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_milestone_awards (id, profile_id, milestone_id, criteria_type, required_value, earned_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, award.ID, award.ProfileID, award.MilestoneID, string(award.CriteriaType), award.RequiredValue, award.EarnedAt)
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
