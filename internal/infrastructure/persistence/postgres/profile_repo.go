// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

import (
	"context"
	"fmt"

	"github.com/HuntedCode/plat-pursuit/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// GetByID returns a profile by internal ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	query := `
		SELECT id, username, psn_linked, is_premium, joined_at, last_synced_at
		FROM profiles
		WHERE id = $1
	`

	var p profile.Profile
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Username,
		&p.PSNLinked,
		&p.IsPremium,
		&p.JoinedAt,
		&p.LastSyncedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// ListActive returns all profiles with a linked PSN account.
func (r *ProfileRepository) ListActive(ctx context.Context) ([]*profile.Profile, error) {
	query := `
		SELECT id, username, psn_linked, is_premium, joined_at, last_synced_at
		FROM profiles
		WHERE psn_linked
		ORDER BY username
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		var p profile.Profile
		if err := rows.Scan(
			&p.ID,
			&p.Username,
			&p.PSNLinked,
			&p.IsPremium,
			&p.JoinedAt,
			&p.LastSyncedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}

	return profiles, rows.Err()
}

// UsernamesByID returns usernames for a set of profiles in one query.
func (r *ProfileRepository) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	query := `SELECT id, username FROM profiles WHERE id = ANY($1)`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query usernames: %w", err)
	}
	defer rows.Close()

	usernames := make(map[string]string, len(ids))
	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		usernames[id] = username
	}

	return usernames, rows.Err()
}
