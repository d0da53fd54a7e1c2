// Package service contains adapters that bridge domain ports to
// concrete infrastructure without owning business rules themselves.
package service

import (
	"context"

	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/profile"
	"github.com/HuntedCode/plat-pursuit/internal/domain/trophy"
	"github.com/HuntedCode/plat-pursuit/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE STATS SOURCE ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// ProfileStatsSource implements milestone.StatsSource over the trophy
// event store and the profile repository. Counters go through the live
// recount path: milestone awards are issued from these numbers, so a
// stale denormalized row must never gate an award.
type ProfileStatsSource struct {
	trophies trophy.Repository
	profiles profile.Repository
}

// NewProfileStatsSource creates a new ProfileStatsSource.
func NewProfileStatsSource(trophies trophy.Repository, profiles profile.Repository) *ProfileStatsSource {
	return &ProfileStatsSource{
		trophies: trophies,
		profiles: profiles,
	}
}

// PlatinumCount returns the number of earned platinums.
func (s *ProfileStatsSource) PlatinumCount(ctx context.Context, profileID string) (int, error) {
	counts, err := s.trophies.CountsLive(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return counts.Platinum, nil
}

// TrophyCount returns the total number of earned trophies.
func (s *ProfileStatsSource) TrophyCount(ctx context.Context, profileID string) (int, error) {
	counts, err := s.trophies.CountsLive(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return counts.Total(), nil
}

// PlaytimeSeconds returns the total reported playtime.
func (s *ProfileStatsSource) PlaytimeSeconds(ctx context.Context, profileID string) (int64, error) {
	return s.trophies.PlaytimeSeconds(ctx, profileID)
}

// CompletedGameCount returns the number of 100%-completed games.
func (s *ProfileStatsSource) CompletedGameCount(ctx context.Context, profileID string) (int, error) {
	return s.trophies.CompletedConceptCount(ctx, profileID)
}

// AccountAgeDays returns the account age in whole days.
func (s *ProfileStatsSource) AccountAgeDays(ctx context.Context, profileID string) (int, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return p.AccountAgeDays(timeutil.Now()), nil
}

// PSNLinked reports whether the profile has a linked PSN account.
func (s *ProfileStatsSource) PSNLinked(ctx context.Context, profileID string) (bool, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	return p.PSNLinked, nil
}

// IsPremium reports whether the profile has an active premium subscription.
func (s *ProfileStatsSource) IsPremium(ctx context.Context, profileID string) (bool, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	return p.IsPremium, nil
}

// MonthlyPlatinumCount returns platinums earned in the current UTC month.
func (s *ProfileStatsSource) MonthlyPlatinumCount(ctx context.Context, profileID string) (int, error) {
	counts, err := s.trophies.MonthlyCounts(ctx, profileID, timeutil.Now())
	if err != nil {
		return 0, err
	}
	return counts.Platinum, nil
}

// MonthlyTrophyCount returns trophies earned in the current UTC month.
func (s *ProfileStatsSource) MonthlyTrophyCount(ctx context.Context, profileID string) (int, error) {
	counts, err := s.trophies.MonthlyCounts(ctx, profileID, timeutil.Now())
	if err != nil {
		return 0, err
	}
	return counts.Total(), nil
}

// Compile-time interface check.
var _ milestone.StatsSource = (*ProfileStatsSource)(nil)
