package command

import (
	"context"
	"testing"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeMilestoneRepo struct {
	defs      map[milestone.CriteriaType][]*milestone.Definition
	awards    []*milestone.Award
	duplicate bool // CreateAward reports every insert as already existing
}

func (f *fakeMilestoneRepo) DefinitionsByCriteria(ctx context.Context, ct milestone.CriteriaType) ([]*milestone.Definition, error) {
	return f.defs[ct], nil
}

func (f *fakeMilestoneRepo) CriteriaTypes(ctx context.Context) ([]milestone.CriteriaType, error) {
	types := make([]milestone.CriteriaType, 0, len(f.defs))
	for ct := range f.defs {
		types = append(types, ct)
	}
	return types, nil
}

func (f *fakeMilestoneRepo) AwardsByProfile(ctx context.Context, profileID string) ([]*milestone.Award, error) {
	return f.awards, nil
}

func (f *fakeMilestoneRepo) AwardsByCriteria(ctx context.Context, profileID string, ct milestone.CriteriaType) ([]*milestone.Award, error) {
	var result []*milestone.Award
	for _, a := range f.awards {
		if a.CriteriaType == ct {
			result = append(result, a)
		}
	}
	return result, nil
}

func (f *fakeMilestoneRepo) CreateAward(ctx context.Context, award *milestone.Award) (bool, error) {
	if f.duplicate {
		return false, nil
	}
	f.awards = append(f.awards, award)
	return true, nil
}

type fakeBadgeRepo struct {
	progress []badge.Progress
	awards   []*badge.Award
	earned   int
}

func (f *fakeBadgeRepo) DefinitionsBySeries(ctx context.Context, seriesSlug string) ([]*badge.Definition, error) {
	return nil, nil
}

func (f *fakeBadgeRepo) SeriesSlugs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeBadgeRepo) ProgressByProfile(ctx context.Context, profileID string) ([]badge.Progress, error) {
	return f.progress, nil
}

func (f *fakeBadgeRepo) ProgressBySeries(ctx context.Context, profileID, seriesSlug string) ([]badge.Progress, error) {
	var result []badge.Progress
	for _, p := range f.progress {
		if p.SeriesSlug == seriesSlug {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeBadgeRepo) FullyEarnedCount(ctx context.Context, profileID string) (int, error) {
	return f.earned, nil
}

func (f *fakeBadgeRepo) AwardsByProfile(ctx context.Context, profileID string) ([]*badge.Award, error) {
	return f.awards, nil
}

func (f *fakeBadgeRepo) TopAwardsByTier(ctx context.Context, profileID string, limit int) ([]*badge.Award, error) {
	return nil, nil
}

func (f *fakeBadgeRepo) CreateAward(ctx context.Context, award *badge.Award) (bool, error) {
	f.awards = append(f.awards, award)
	return true, nil
}

func (f *fakeBadgeRepo) CachedBreakdown(ctx context.Context, profileID string) (badge.Breakdown, error) {
	return badge.Breakdown{}, nil
}

func (f *fakeBadgeRepo) StoreBreakdown(ctx context.Context, profileID string, b badge.Breakdown) error {
	return nil
}

func (f *fakeBadgeRepo) StoreBreakdowns(ctx context.Context, breakdowns map[string]badge.Breakdown) error {
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func platinumRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{
		defs: map[milestone.CriteriaType][]*milestone.Definition{
			milestone.CriteriaPlatinumCount: {
				{ID: "plat-5", Name: "Collector", CriteriaType: milestone.CriteriaPlatinumCount, RequiredValue: 5},
				{ID: "plat-10", Name: "Hoarder", CriteriaType: milestone.CriteriaPlatinumCount, RequiredValue: 10},
				{ID: "plat-25", Name: "Legend", CriteriaType: milestone.CriteriaPlatinumCount, RequiredValue: 25},
			},
		},
	}
}

func registryWithValue(value int) *milestone.Registry {
	r := milestone.NewRegistry()
	r.Register(milestone.CriteriaPlatinumCount, milestone.HandlerFunc(
		func(ctx context.Context, profileID string) (int, error) {
			return value, nil
		},
	))
	return r
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestCheckAwards_IssuesEveryCrossedRung(t *testing.T) {
	repo := platinumRepo()
	h := NewCheckAwardsHandler(repo, registryWithValue(12), &fakeBadgeRepo{}, nil, nil)

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	require.NoError(t, err)
	require.Len(t, result.MilestoneAwards, 2)
	assert.Equal(t, "plat-5", result.MilestoneAwards[0].MilestoneID)
	assert.Equal(t, "plat-10", result.MilestoneAwards[1].MilestoneID)
	assert.Equal(t, 2, result.EventsPublished)
}

func TestCheckAwards_SkipsAlreadyAwarded(t *testing.T) {
	repo := platinumRepo()
	repo.awards = []*milestone.Award{
		{ID: "a-1", ProfileID: "profile-1", MilestoneID: "plat-5", CriteriaType: milestone.CriteriaPlatinumCount},
	}
	h := NewCheckAwardsHandler(repo, registryWithValue(12), &fakeBadgeRepo{}, nil, nil)

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	require.NoError(t, err)
	require.Len(t, result.MilestoneAwards, 1)
	assert.Equal(t, "plat-10", result.MilestoneAwards[0].MilestoneID)
}

func TestCheckAwards_DuplicateInsertIsNotAnAward(t *testing.T) {
	repo := platinumRepo()
	repo.duplicate = true
	h := NewCheckAwardsHandler(repo, registryWithValue(12), &fakeBadgeRepo{}, nil, nil)

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	// Проигранная гонка с параллельной синхронизацией - не ошибка.
	require.NoError(t, err)
	assert.Empty(t, result.MilestoneAwards)
	assert.Zero(t, result.EventsPublished)
}

func TestCheckAwards_ValueBelowFirstRung(t *testing.T) {
	h := NewCheckAwardsHandler(platinumRepo(), registryWithValue(3), &fakeBadgeRepo{}, nil, nil)

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	require.NoError(t, err)
	assert.Empty(t, result.MilestoneAwards)
}

func TestCheckAwards_CompletedBadgeProgressIssuesAward(t *testing.T) {
	badgeRepo := &fakeBadgeRepo{
		progress: []badge.Progress{
			{ProfileID: "profile-1", BadgeID: "souls-1", SeriesSlug: "soulsborne", Tier: 1, CompletedConcepts: 3, RequiredStages: 3},
			{ProfileID: "profile-1", BadgeID: "souls-2", SeriesSlug: "soulsborne", Tier: 2, CompletedConcepts: 3, RequiredStages: 5},
		},
		earned: 1,
	}
	h := NewCheckAwardsHandler(&fakeMilestoneRepo{}, milestone.NewRegistry(), badgeRepo, nil, nil)

	var published []shared.Event
	h.eventPublisher = publisherFunc(func(event shared.Event) error {
		published = append(published, event)
		return nil
	})

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	require.NoError(t, err)
	require.Len(t, result.BadgeAwards, 1)
	assert.Equal(t, "souls-1", result.BadgeAwards[0].BadgeID)

	// Событие несёт живой XP и контекст следующего тира.
	require.Len(t, published, 1)
	assert.Equal(t, shared.EventBadgeAwarded, published[0].EventType())
}

func TestCheckAwards_IncompleteBadgeProgressIgnored(t *testing.T) {
	badgeRepo := &fakeBadgeRepo{
		progress: []badge.Progress{
			{ProfileID: "profile-1", BadgeID: "souls-1", SeriesSlug: "soulsborne", Tier: 1, CompletedConcepts: 2, RequiredStages: 3},
		},
	}
	h := NewCheckAwardsHandler(&fakeMilestoneRepo{}, milestone.NewRegistry(), badgeRepo, nil, nil)

	result, err := h.Handle(context.Background(), CheckAwardsCommand{ProfileID: "profile-1"})

	require.NoError(t, err)
	assert.Empty(t, result.BadgeAwards)
}

func TestCheckAwards_RequiresProfileID(t *testing.T) {
	h := NewCheckAwardsHandler(&fakeMilestoneRepo{}, milestone.NewRegistry(), &fakeBadgeRepo{}, nil, nil)

	_, err := h.Handle(context.Background(), CheckAwardsCommand{})

	assert.Error(t, err)
}
