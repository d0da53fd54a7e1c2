package query

import (
	"context"
	"errors"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE PROGRESS QUERY
// Собирает страницу прогресса профиля: позиции на лестницах майлстоунов,
// прогресс по бейджам серий и разложение XP. Один профиль - живой
// пересчёт, батчевые обходы сюда не ходят.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileProgressQuery содержит параметры запроса прогресса.
type GetProfileProgressQuery struct {
	// ProfileID - идентификатор профиля.
	ProfileID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetProfileProgressQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile id is required")
	}
	return nil
}

// NextTierDTO - следующий незаработанный тир лестницы.
type NextTierDTO struct {
	// MilestoneID - идентификатор следующего майлстоуна.
	MilestoneID string `json:"milestone_id"`

	// Name - название следующего майлстоуна.
	Name string `json:"name"`

	// RequiredValue - его порог.
	RequiredValue int `json:"required_value"`

	// ProgressPercentage - процент продвижения к порогу (0-100).
	ProgressPercentage int `json:"progress_percentage"`
}

// MilestoneProgressDTO - позиция профиля на лестнице одного типа критерия.
type MilestoneProgressDTO struct {
	// CriteriaType - тип критерия.
	CriteriaType string `json:"criteria_type"`

	// CompletedUnits - текущее значение прогресса.
	CompletedUnits int `json:"completed_units"`

	// CurrentTier - 1-индексированный высший достигнутый тир; 0, если нет.
	CurrentTier int `json:"current_tier"`

	// TotalTiers - длина лестницы; 0 для разовых типов.
	TotalTiers int `json:"total_tiers"`

	// IsMaxTier - достигнут высший тир.
	IsMaxTier bool `json:"is_max_tier"`

	// NextTier - следующий тир; отсутствует на высшем тире.
	NextTier *NextTierDTO `json:"next_tier,omitempty"`
}

// BadgeProgressDTO - прогресс по одному бейджу серии.
type BadgeProgressDTO struct {
	// BadgeID - идентификатор бейджа.
	BadgeID string `json:"badge_id"`

	// SeriesSlug - серия бейджа.
	SeriesSlug string `json:"series_slug"`

	// Tier - тир бейджа.
	Tier int `json:"tier"`

	// CompletedConcepts - завершённые игры серии.
	CompletedConcepts int `json:"completed_concepts"`

	// RequiredStages - порог бейджа.
	RequiredStages int `json:"required_stages"`

	// IsComplete - порог достигнут.
	IsComplete bool `json:"is_complete"`

	// IsEarned - награда за бейдж выдана.
	IsEarned bool `json:"is_earned"`
}

// XPBreakdownDTO - разложение XP профиля.
type XPBreakdownDTO struct {
	// Total - суммарный XP.
	Total int `json:"total"`

	// ProgressXP - XP за завершённые стейджи.
	ProgressXP int `json:"progress_xp"`

	// BadgeXP - бонус за полные бейджи.
	BadgeXP int `json:"badge_xp"`
}

// GetProfileProgressResult содержит полную картину прогресса профиля.
type GetProfileProgressResult struct {
	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Milestones - позиции на лестницах по всем типам критериев.
	Milestones []MilestoneProgressDTO `json:"milestones"`

	// Badges - прогресс по бейджам.
	Badges []BadgeProgressDTO `json:"badges"`

	// XP - разложение XP (живой пересчёт).
	XP XPBreakdownDTO `json:"xp"`
}

// GetProfileProgressHandler обрабатывает запросы прогресса профиля.
type GetProfileProgressHandler struct {
	milestoneCalc *milestone.Calculator
	milestoneRepo milestone.Repository
	badgeRepo     badge.Repository
	xpCalc        *badge.Calculator
}

// NewGetProfileProgressHandler создаёт новый обработчик запроса прогресса.
func NewGetProfileProgressHandler(
	milestoneCalc *milestone.Calculator,
	milestoneRepo milestone.Repository,
	badgeRepo badge.Repository,
	xpCalc *badge.Calculator,
) *GetProfileProgressHandler {
	return &GetProfileProgressHandler{
		milestoneCalc: milestoneCalc,
		milestoneRepo: milestoneRepo,
		badgeRepo:     badgeRepo,
		xpCalc:        xpCalc,
	}
}

// Handle выполняет запрос прогресса профиля.
func (h *GetProfileProgressHandler) Handle(ctx context.Context, query GetProfileProgressQuery) (*GetProfileProgressResult, error) {
	// Валидация входных данных
	if err := query.Validate(); err != nil {
		return nil, shared.WrapDomainError("query", "GetProfileProgress", shared.ErrValidation, "profile id is required")
	}

	milestones, err := h.collectMilestones(ctx, query.ProfileID)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetProfileProgress", err, "failed to compute milestone progress")
	}

	badges, err := h.collectBadges(ctx, query.ProfileID)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetProfileProgress", err, "failed to collect badge progress")
	}

	breakdown, err := h.xpCalc.TotalXPLive(ctx, query.ProfileID)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetProfileProgress", err, "failed to compute xp")
	}

	return &GetProfileProgressResult{
		ProfileID:  query.ProfileID,
		Milestones: milestones,
		Badges:     badges,
		XP: XPBreakdownDTO{
			Total:      breakdown.Total,
			ProgressXP: breakdown.ProgressXP,
			BadgeXP:    breakdown.BadgeXP,
		},
	}, nil
}

// collectMilestones считает позицию профиля на каждой лестнице.
func (h *GetProfileProgressHandler) collectMilestones(ctx context.Context, profileID string) ([]MilestoneProgressDTO, error) {
	types, err := h.milestoneRepo.CriteriaTypes(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]MilestoneProgressDTO, 0, len(types))
	for _, criteriaType := range types {
		p, err := h.milestoneCalc.ComputeProgress(ctx, profileID, criteriaType)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, toMilestoneDTO(p))
	}
	return dtos, nil
}

// collectBadges читает записи прогресса и помечает заработанные бейджи.
func (h *GetProfileProgressHandler) collectBadges(ctx context.Context, profileID string) ([]BadgeProgressDTO, error) {
	records, err := h.badgeRepo.ProgressByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	awards, err := h.badgeRepo.AwardsByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	earned := make(map[string]struct{}, len(awards))
	for _, a := range awards {
		earned[a.BadgeID] = struct{}{}
	}

	dtos := make([]BadgeProgressDTO, 0, len(records))
	for _, r := range records {
		_, isEarned := earned[r.BadgeID]
		dtos = append(dtos, BadgeProgressDTO{
			BadgeID:           r.BadgeID,
			SeriesSlug:        r.SeriesSlug,
			Tier:              int(r.Tier),
			CompletedConcepts: r.CompletedConcepts,
			RequiredStages:    r.RequiredStages,
			IsComplete:        r.IsComplete(),
			IsEarned:          isEarned,
		})
	}
	return dtos, nil
}

func toMilestoneDTO(p *milestone.Progress) MilestoneProgressDTO {
	dto := MilestoneProgressDTO{
		CriteriaType:   string(p.CriteriaType),
		CompletedUnits: p.CompletedUnits,
		CurrentTier:    p.CurrentTier,
		TotalTiers:     p.TotalTiers,
		IsMaxTier:      p.IsMaxTier,
	}
	if p.NextTier != nil {
		dto.NextTier = &NextTierDTO{
			MilestoneID:        p.NextTier.MilestoneID,
			Name:               p.NextTier.Name,
			RequiredValue:      p.NextTier.RequiredValue,
			ProgressPercentage: p.NextTier.ProgressPercentage,
		}
	}
	return dto
}
