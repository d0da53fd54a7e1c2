// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/rating"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT RATING COMMAND
// Creates or replaces a profile's rating for a scope (base game or DLC
// trophy group). Resubmission is an upsert keyed by (profile, concept,
// group); the scope averages are recomputed on the write path so readers
// see fresh numbers immediately.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitRatingCommand contains the data for one rating submission.
type SubmitRatingCommand struct {
	// ProfileID is the internal ID of the submitting profile.
	ProfileID string

	// ConceptID is the ID of the rated game.
	ConceptID string

	// GroupID is the DLC trophy group; empty means the base game.
	GroupID string

	// Difficulty is the difficulty score, 1-10.
	Difficulty int

	// Grindiness is the grind score, 1-10.
	Grindiness int

	// Fun is the enjoyment score, 1-10.
	Fun int

	// Overall is the overall score, 1-10.
	Overall int

	// Hours is the estimated time to platinum, in hours.
	Hours float64
}

// Validate validates the command.
func (c SubmitRatingCommand) Validate() error {
	r := rating.Rating{
		ProfileID:  c.ProfileID,
		ConceptID:  c.ConceptID,
		GroupID:    c.GroupID,
		Difficulty: c.Difficulty,
		Grindiness: c.Grindiness,
		Fun:        c.Fun,
		Overall:    c.Overall,
		Hours:      c.Hours,
	}
	return r.Validate()
}

// SubmitRatingResult contains the result of a rating submission.
type SubmitRatingResult struct {
	// RatingID is the ID of the stored rating.
	RatingID string

	// Averages are the recomputed scope averages after this submission.
	Averages *rating.Averages

	// SubmittedAt is when the rating was stored.
	SubmittedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitRatingHandler handles the SubmitRatingCommand.
type SubmitRatingHandler struct {
	ratingRepo     rating.Repository
	cache          shared.KeyValueCache
	cacheTTL       time.Duration
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// resolveConcept folds regional releases onto one canonical
	// concept id; nil means no folding. Must match the resolver used
	// on the read side or averages split across regions.
	resolveConcept func(string) string
}

// NewSubmitRatingHandler creates a new SubmitRatingHandler.
// cache may be nil; averages are then only recomputed on read.
func NewSubmitRatingHandler(
	ratingRepo rating.Repository,
	cache shared.KeyValueCache,
	cacheTTL time.Duration,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *SubmitRatingHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitRatingHandler{
		ratingRepo:     ratingRepo,
		cache:          cache,
		cacheTTL:       cacheTTL,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// SetConceptResolver sets the regional-release folding function.
func (h *SubmitRatingHandler) SetConceptResolver(resolve func(string) string) {
	h.resolveConcept = resolve
}

// Handle executes the submit rating command.
func (h *SubmitRatingHandler) Handle(ctx context.Context, cmd SubmitRatingCommand) (*SubmitRatingResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapDomainError("command", "SubmitRating", shared.ErrValidation, err.Error())
	}

	conceptID := cmd.ConceptID
	if h.resolveConcept != nil {
		conceptID = h.resolveConcept(conceptID)
	}

	now := time.Now().UTC()
	r := &rating.Rating{
		ID:          uuid.New().String(),
		ProfileID:   cmd.ProfileID,
		ConceptID:   conceptID,
		GroupID:     cmd.GroupID,
		Difficulty:  cmd.Difficulty,
		Grindiness:  cmd.Grindiness,
		Fun:         cmd.Fun,
		Overall:     cmd.Overall,
		Hours:       cmd.Hours,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	// The repository keeps the original ID and SubmittedAt when the
	// (profile, concept, group) row already exists.
	if err := h.ratingRepo.Upsert(ctx, r); err != nil {
		return nil, shared.WrapDomainError("command", "SubmitRating", err, "failed to store rating")
	}

	averages := h.refreshAverages(ctx, r.Scope())

	event := shared.NewRatingSubmittedEvent(cmd.ProfileID, conceptID, cmd.GroupID)
	if err := h.eventPublisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish rating event",
			"profile_id", cmd.ProfileID,
			"concept_id", cmd.ConceptID,
			"error", err,
		)
	}

	return &SubmitRatingResult{
		RatingID:    r.ID,
		Averages:    averages,
		SubmittedAt: now,
	}, nil
}

// refreshAverages recomputes the scope averages and writes them through
// to the cache. A failure here never fails the submission: the batch
// recompute job repairs stale scopes.
func (h *SubmitRatingHandler) refreshAverages(ctx context.Context, scope rating.Scope) *rating.Averages {
	ratings, err := h.ratingRepo.ByScope(ctx, scope)
	if err != nil {
		h.logger.Warn("failed to reload scope ratings",
			"concept_id", scope.ConceptID,
			"group_id", scope.GroupID,
			"error", err,
		)
		return nil
	}

	averages := rating.ComputeAverages(ratings)
	if h.cache == nil {
		return averages
	}

	if averages == nil {
		if err := h.cache.Delete(ctx, scope.CacheKey()); err != nil {
			h.logger.Warn("failed to drop cached averages", "key", scope.CacheKey(), "error", err)
		}
		return nil
	}

	if err := h.cache.Set(ctx, scope.CacheKey(), averages, h.cacheTTL); err != nil {
		h.logger.Warn("failed to cache averages", "key", scope.CacheKey(), "error", err)
	}
	return averages
}
