package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK AWARDS COMMAND
// Runs after a trophy sync: walks every milestone ladder and every badge
// progress record of the profile, issues the awards whose thresholds are
// now crossed, and emits progression events with live XP context.
//
// Awards are never revoked. A threshold that is no longer met (trophy
// data corrected downward) simply stops producing new awards; the
// existing rows stay. Duplicate issue attempts are resolved by the
// repository and reported as "not created" without an error.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAwardsCommand identifies the profile to check.
type CheckAwardsCommand struct {
	// ProfileID is the internal ID of the profile.
	ProfileID string
}

// Validate validates the command.
func (c CheckAwardsCommand) Validate() error {
	if c.ProfileID == "" {
		return errors.New("check_awards: profile_id is required")
	}
	return nil
}

// CheckAwardsResult contains the newly issued awards.
type CheckAwardsResult struct {
	// ProfileID is the checked profile.
	ProfileID string

	// MilestoneAwards are the milestone awards issued by this run.
	MilestoneAwards []*milestone.Award

	// BadgeAwards are the badge awards issued by this run.
	BadgeAwards []*badge.Award

	// EventsPublished counts the progression events emitted.
	EventsPublished int

	// CheckedAt is when the check ran.
	CheckedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CheckAwardsHandler handles the CheckAwardsCommand.
type CheckAwardsHandler struct {
	milestoneRepo  milestone.Repository
	registry       *milestone.Registry
	badgeRepo      badge.Repository
	xpCalc         *badge.Calculator
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewCheckAwardsHandler creates a new CheckAwardsHandler.
func NewCheckAwardsHandler(
	milestoneRepo milestone.Repository,
	registry *milestone.Registry,
	badgeRepo badge.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *CheckAwardsHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckAwardsHandler{
		milestoneRepo:  milestoneRepo,
		registry:       registry,
		badgeRepo:      badgeRepo,
		xpCalc:         badge.NewCalculator(badgeRepo),
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Handle executes the check awards command.
func (h *CheckAwardsHandler) Handle(ctx context.Context, cmd CheckAwardsCommand) (*CheckAwardsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapDomainError("command", "CheckAwards", shared.ErrValidation, err.Error())
	}

	result := &CheckAwardsResult{
		ProfileID: cmd.ProfileID,
		CheckedAt: time.Now().UTC(),
	}

	if err := h.checkMilestones(ctx, cmd.ProfileID, result); err != nil {
		return nil, shared.WrapDomainError("command", "CheckAwards", err, "milestone check failed")
	}

	if err := h.checkBadges(ctx, cmd.ProfileID, result); err != nil {
		return nil, shared.WrapDomainError("command", "CheckAwards", err, "badge check failed")
	}

	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Milestones
// ─────────────────────────────────────────────────────────────────────────────

// checkMilestones walks every criteria ladder. A failing progress handler
// skips its own ladder only; the remaining criteria are still checked.
func (h *CheckAwardsHandler) checkMilestones(ctx context.Context, profileID string, result *CheckAwardsResult) error {
	types, err := h.milestoneRepo.CriteriaTypes(ctx)
	if err != nil {
		return err
	}

	existing, err := h.milestoneRepo.AwardsByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	awarded := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		awarded[a.MilestoneID] = struct{}{}
	}

	for _, criteriaType := range types {
		if err := h.checkLadder(ctx, profileID, criteriaType, awarded, result); err != nil {
			h.logger.Warn("milestone ladder check failed",
				"profile_id", profileID,
				"criteria_type", string(criteriaType),
				"error", err,
			)
		}
	}

	return nil
}

// checkLadder issues every rung of one ladder whose threshold the current
// progress value crosses. One-off criteria are one-rung ladders with a
// threshold of 1, so the same walk covers them.
func (h *CheckAwardsHandler) checkLadder(
	ctx context.Context,
	profileID string,
	criteriaType milestone.CriteriaType,
	awarded map[string]struct{},
	result *CheckAwardsResult,
) error {
	handler, ok := h.registry.Handler(criteriaType)
	if !ok {
		return milestone.ErrUnknownCriteriaType
	}

	value, err := handler.Compute(ctx, profileID)
	if err != nil {
		return err
	}

	ladder, err := h.milestoneRepo.DefinitionsByCriteria(ctx, criteriaType)
	if err != nil {
		return err
	}

	progress := milestone.RungFor(ladder, criteriaType, value)
	next := toNextTierContext(progress)

	for i, def := range ladder {
		if def.RequiredValue > value {
			break
		}
		if _, ok := awarded[def.ID]; ok {
			continue
		}

		award := &milestone.Award{
			ID:            uuid.New().String(),
			ProfileID:     profileID,
			MilestoneID:   def.ID,
			CriteriaType:  criteriaType,
			RequiredValue: def.RequiredValue,
			EarnedAt:      time.Now().UTC(),
		}

		created, err := h.milestoneRepo.CreateAward(ctx, award)
		if err != nil {
			h.logger.Error("failed to create milestone award",
				"profile_id", profileID,
				"milestone_id", def.ID,
				"error", err,
			)
			continue
		}
		if !created {
			// Lost the race against a concurrent sync. The award exists.
			awarded[def.ID] = struct{}{}
			continue
		}

		awarded[def.ID] = struct{}{}
		result.MilestoneAwards = append(result.MilestoneAwards, award)

		event := shared.NewMilestoneAwardedEvent(profileID, string(criteriaType), i+1, value, next)
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish milestone event",
				"profile_id", profileID,
				"milestone_id", def.ID,
				"error", err,
			)
			continue
		}
		result.EventsPublished++
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Badges
// ─────────────────────────────────────────────────────────────────────────────

// checkBadges issues badge awards for every completed progress record
// that has no award yet.
func (h *CheckAwardsHandler) checkBadges(ctx context.Context, profileID string, result *CheckAwardsResult) error {
	records, err := h.badgeRepo.ProgressByProfile(ctx, profileID)
	if err != nil {
		return err
	}

	existing, err := h.badgeRepo.AwardsByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	awarded := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		awarded[a.BadgeID] = struct{}{}
	}

	for _, r := range records {
		if !r.IsComplete() {
			continue
		}
		if _, ok := awarded[r.BadgeID]; ok {
			continue
		}

		award := &badge.Award{
			ID:         uuid.New().String(),
			ProfileID:  profileID,
			BadgeID:    r.BadgeID,
			SeriesSlug: r.SeriesSlug,
			Tier:       r.Tier,
			EarnedAt:   time.Now().UTC(),
		}

		created, err := h.badgeRepo.CreateAward(ctx, award)
		if err != nil {
			h.logger.Error("failed to create badge award",
				"profile_id", profileID,
				"badge_id", r.BadgeID,
				"error", err,
			)
			continue
		}
		if !created {
			awarded[r.BadgeID] = struct{}{}
			continue
		}

		awarded[r.BadgeID] = struct{}{}
		result.BadgeAwards = append(result.BadgeAwards, award)

		h.emitBadgeEvent(ctx, profileID, r, records, result)
	}

	return nil
}

// emitBadgeEvent publishes the badge event with live XP. The denormalized
// XP table may lag behind the sync that triggered this check, so the
// notification context is always recomputed from the progress records.
func (h *CheckAwardsHandler) emitBadgeEvent(
	ctx context.Context,
	profileID string,
	earned badge.Progress,
	records []badge.Progress,
	result *CheckAwardsResult,
) {
	xp, err := h.xpCalc.TotalXPLive(ctx, profileID)
	if err != nil {
		h.logger.Warn("failed to compute live xp for badge event",
			"profile_id", profileID,
			"badge_id", earned.BadgeID,
			"error", err,
		)
		return
	}

	event := shared.NewBadgeAwardedEvent(
		profileID,
		earned.SeriesSlug,
		int(earned.Tier),
		nextBadgeTier(earned, records),
		shared.XPContext{Total: xp.Total, ProgressXP: xp.ProgressXP, BadgeXP: xp.BadgeXP},
	)
	if err := h.eventPublisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish badge event",
			"profile_id", profileID,
			"badge_id", earned.BadgeID,
			"error", err,
		)
		return
	}
	result.EventsPublished++
}

// nextBadgeTier finds the next tier of the same series in the progress
// records; nil when the earned tier is the last one tracked.
func nextBadgeTier(earned badge.Progress, records []badge.Progress) *shared.NextTierContext {
	for _, r := range records {
		if r.SeriesSlug != earned.SeriesSlug || r.Tier != earned.Tier+1 {
			continue
		}
		pct := 0
		if r.RequiredStages > 0 {
			pct = r.CompletedConcepts * 100 / r.RequiredStages
			if pct > 100 {
				pct = 100
			}
		}
		return &shared.NextTierContext{
			Tier:               int(r.Tier),
			RequiredValue:      r.RequiredStages,
			CurrentValue:       r.CompletedConcepts,
			ProgressPercentage: pct,
		}
	}
	return nil
}

// toNextTierContext converts domain next-tier info to event context.
func toNextTierContext(p *milestone.Progress) *shared.NextTierContext {
	if p == nil || p.NextTier == nil {
		return nil
	}
	return &shared.NextTierContext{
		Tier:               p.CurrentTier + 1,
		RequiredValue:      p.NextTier.RequiredValue,
		CurrentValue:       p.CompletedUnits,
		ProgressPercentage: p.NextTier.ProgressPercentage,
	}
}
