package command

import (
	"context"
	"testing"

	"github.com/HuntedCode/plat-pursuit/internal/domain/rating"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRatingRepo держит оценки в памяти с upsert-семантикой по ключу
// (профиль, игра, группа).
type fakeRatingRepo struct {
	ratings map[string]*rating.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*rating.Rating)}
}

func ratingKey(profileID string, scope rating.Scope) string {
	return profileID + "|" + scope.ConceptID + "|" + scope.GroupID
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, r *rating.Rating) error {
	key := ratingKey(r.ProfileID, r.Scope())
	if existing, ok := f.ratings[key]; ok {
		r.ID = existing.ID
		r.SubmittedAt = existing.SubmittedAt
	}
	stored := *r
	f.ratings[key] = &stored
	return nil
}

func (f *fakeRatingRepo) ByScope(ctx context.Context, scope rating.Scope) ([]*rating.Rating, error) {
	var result []*rating.Rating
	for _, r := range f.ratings {
		if r.Scope() == scope {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRatingRepo) ByProfile(ctx context.Context, profileID string, scope rating.Scope) (*rating.Rating, error) {
	return f.ratings[ratingKey(profileID, scope)], nil
}

func (f *fakeRatingRepo) Scopes(ctx context.Context) ([]rating.Scope, error) {
	seen := make(map[rating.Scope]struct{})
	var scopes []rating.Scope
	for _, r := range f.ratings {
		if _, ok := seen[r.Scope()]; !ok {
			seen[r.Scope()] = struct{}{}
			scopes = append(scopes, r.Scope())
		}
	}
	return scopes, nil
}

func validSubmitCommand() SubmitRatingCommand {
	return SubmitRatingCommand{
		ProfileID:  "profile-1",
		ConceptID:  "10001",
		Difficulty: 7,
		Grindiness: 5,
		Fun:        9,
		Overall:    8,
		Hours:      60,
	}
}

func TestSubmitRating_StoresAndReturnsAverages(t *testing.T) {
	repo := newFakeRatingRepo()
	h := NewSubmitRatingHandler(repo, memory.NewCache(), 0, nil, nil)

	result, err := h.Handle(context.Background(), validSubmitCommand())

	require.NoError(t, err)
	assert.NotEmpty(t, result.RatingID)
	require.NotNil(t, result.Averages)
	assert.Equal(t, 1, result.Averages.Count)
	assert.InDelta(t, 7.0, result.Averages.Difficulty, 0.001)
}

func TestSubmitRating_ResubmissionIsUpsert(t *testing.T) {
	repo := newFakeRatingRepo()
	h := NewSubmitRatingHandler(repo, nil, 0, nil, nil)

	first, err := h.Handle(context.Background(), validSubmitCommand())
	require.NoError(t, err)

	cmd := validSubmitCommand()
	cmd.Overall = 3
	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	// Повторная отправка заменяет строку, а не добавляет вторую.
	assert.Equal(t, first.RatingID, second.RatingID)
	ratings, err := repo.ByScope(context.Background(), rating.Scope{ConceptID: "10001"})
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 3, ratings[0].Overall)
}

func TestSubmitRating_ScoreOutOfRange(t *testing.T) {
	h := NewSubmitRatingHandler(newFakeRatingRepo(), nil, 0, nil, nil)

	cmd := validSubmitCommand()
	cmd.Difficulty = 11
	_, err := h.Handle(context.Background(), cmd)

	assert.Error(t, err)
}

func TestSubmitRating_DLCGroupIsSeparateScope(t *testing.T) {
	repo := newFakeRatingRepo()
	h := NewSubmitRatingHandler(repo, nil, 0, nil, nil)

	base := validSubmitCommand()
	_, err := h.Handle(context.Background(), base)
	require.NoError(t, err)

	dlc := validSubmitCommand()
	dlc.GroupID = "002"
	dlc.Overall = 2
	result, err := h.Handle(context.Background(), dlc)
	require.NoError(t, err)

	// Средние DLC-группы не подмешивают оценку базовой игры.
	require.NotNil(t, result.Averages)
	assert.Equal(t, 1, result.Averages.Count)
	assert.InDelta(t, 2.0, result.Averages.Overall, 0.001)
}

func TestSubmitRating_ResolverFoldsRegionalReleases(t *testing.T) {
	repo := newFakeRatingRepo()
	h := NewSubmitRatingHandler(repo, nil, 0, nil, nil)
	h.SetConceptResolver(func(conceptID string) string {
		if conceptID == "20001" {
			return "10001"
		}
		return conceptID
	})

	na := validSubmitCommand()
	_, err := h.Handle(context.Background(), na)
	require.NoError(t, err)

	eu := validSubmitCommand()
	eu.ProfileID = "profile-2"
	eu.ConceptID = "20001"
	result, err := h.Handle(context.Background(), eu)
	require.NoError(t, err)

	// Обе оценки легли в канонический скоуп.
	require.NotNil(t, result.Averages)
	assert.Equal(t, 2, result.Averages.Count)
}

func TestSubmitRating_PublishesEvent(t *testing.T) {
	var published []shared.Event
	publisher := publisherFunc(func(event shared.Event) error {
		published = append(published, event)
		return nil
	})

	h := NewSubmitRatingHandler(newFakeRatingRepo(), nil, 0, publisher, nil)
	_, err := h.Handle(context.Background(), validSubmitCommand())

	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, shared.EventRatingSubmitted, published[0].EventType())
}

// publisherFunc адаптирует функцию к shared.EventPublisher.
type publisherFunc func(event shared.Event) error

func (f publisherFunc) Publish(event shared.Event) error {
	return f(event)
}
