package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/profile"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/internal/domain/timeline"
	"github.com/HuntedCode/plat-pursuit/internal/domain/trophy"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TIMELINE QUERY
// Собирает таймлайн вех профиля: независимые генераторы выдают кандидатов,
// доменный отбор выбирает лучшие и сортирует хронологически. Итог кешируется -
// таймлайн меняется только после синхронизации трофеев.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMaxTimelineEvents - размер таймлайна по умолчанию.
const DefaultMaxTimelineEvents = 10

// timelineCacheKey - ключ кеша таймлайна профиля.
func timelineCacheKey(profileID string) string {
	return "timeline:" + profileID
}

// GetTimelineQuery содержит параметры запроса таймлайна.
type GetTimelineQuery struct {
	// ProfileID - идентификатор профиля.
	ProfileID string

	// MaxEvents - максимум событий (по умолчанию 10).
	MaxEvents int

	// SkipCache - принудительная пересборка без чтения кеша.
	SkipCache bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetTimelineQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile id is required")
	}
	if q.MaxEvents < 0 {
		return errors.New("max events cannot be negative")
	}
	if q.MaxEvents == 0 {
		q.MaxEvents = DefaultMaxTimelineEvents
	}
	return nil
}

// TimelineEventDTO - одно событие таймлайна.
type TimelineEventDTO struct {
	// Type - тип события.
	Type string `json:"type"`

	// Title - заголовок.
	Title string `json:"title"`

	// Subtitle - подзаголовок; может отсутствовать.
	Subtitle string `json:"subtitle,omitempty"`

	// Date - дата вехи.
	Date time.Time `json:"date"`
}

// GetTimelineResult содержит собранный таймлайн.
type GetTimelineResult struct {
	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Events - события в хронологическом порядке. Пустой срез означает,
	// что вех меньше минимума и таймлайн не показывается.
	Events []TimelineEventDTO `json:"events"`

	// GeneratedAt - время сборки.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetTimelineHandler обрабатывает запросы таймлайна профиля.
type GetTimelineHandler struct {
	profileRepo   profile.Repository
	trophyRepo    trophy.Repository
	milestoneRepo milestone.Repository
	badgeRepo     badge.Repository
	cache         shared.KeyValueCache
	cacheTTL      time.Duration
	logger        *slog.Logger
}

// NewGetTimelineHandler создаёт новый обработчик запроса таймлайна.
// cache может быть nil - тогда таймлайн собирается на каждый запрос.
func NewGetTimelineHandler(
	profileRepo profile.Repository,
	trophyRepo trophy.Repository,
	milestoneRepo milestone.Repository,
	badgeRepo badge.Repository,
	cache shared.KeyValueCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *GetTimelineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetTimelineHandler{
		profileRepo:   profileRepo,
		trophyRepo:    trophyRepo,
		milestoneRepo: milestoneRepo,
		badgeRepo:     badgeRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// Handle выполняет запрос таймлайна.
func (h *GetTimelineHandler) Handle(ctx context.Context, query GetTimelineQuery) (*GetTimelineResult, error) {
	// Валидация входных данных
	if err := query.Validate(); err != nil {
		return nil, shared.WrapDomainError("query", "GetTimeline", shared.ErrValidation, err.Error())
	}

	if h.cache != nil && !query.SkipCache {
		var cached GetTimelineResult
		if err := h.cache.Get(ctx, timelineCacheKey(query.ProfileID), &cached); err == nil {
			return &cached, nil
		}
	}

	p, err := h.profileRepo.GetByID(ctx, query.ProfileID)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetTimeline", err, "failed to get profile")
	}

	candidates := h.collectCandidates(ctx, p)
	selected := timeline.Select(candidates, query.MaxEvents)

	result := &GetTimelineResult{
		ProfileID:   query.ProfileID,
		Events:      toTimelineDTOs(selected),
		GeneratedAt: time.Now().UTC(),
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, timelineCacheKey(query.ProfileID), result, h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache timeline",
				"profile_id", query.ProfileID,
				"error", err,
			)
		}
	}

	return result, nil
}

// collectCandidates опрашивает генераторы вех. Каждый генератор независим:
// его отказ сужает таймлайн, но не роняет запрос.
func (h *GetTimelineHandler) collectCandidates(ctx context.Context, p *profile.Profile) []*timeline.Event {
	candidates := []*timeline.Event{
		{
			Type:     timeline.EventJoined,
			Title:    "Joined Plat Pursuit",
			Date:     p.JoinedAt,
			Priority: timeline.PriorityJoined,
		},
	}

	generators := []struct {
		name string
		fn   func(ctx context.Context, profileID string) ([]*timeline.Event, error)
	}{
		{"first_trophy", h.firstTrophy},
		{"first_platinum", h.firstPlatinum},
		{"fastest_platinum", h.fastestPlatinum},
		{"rarest_platinum", h.rarestPlatinum},
		{"platinum_milestones", h.platinumMilestones},
		{"badges", h.badgeAwards},
	}

	for _, g := range generators {
		events, err := g.fn(ctx, p.ID)
		if err != nil {
			h.logger.Warn("timeline generator failed",
				"generator", g.name,
				"profile_id", p.ID,
				"error", err,
			)
			continue
		}
		candidates = append(candidates, events...)
	}

	return candidates
}

// ─────────────────────────────────────────────────────────────────────────────
// Генераторы вех
// ─────────────────────────────────────────────────────────────────────────────

func (h *GetTimelineHandler) firstTrophy(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	first, err := h.trophyRepo.FirstEarned(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if first == nil || first.EarnedAt == nil {
		return nil, nil
	}
	return []*timeline.Event{{
		Type:     timeline.EventFirstTrophy,
		Title:    "First trophy",
		Date:     *first.EarnedAt,
		Priority: timeline.PriorityFirstTrophy,
	}}, nil
}

func (h *GetTimelineHandler) firstPlatinum(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	info, err := h.trophyRepo.FirstPlatinum(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	return []*timeline.Event{{
		Type:     timeline.EventFirstPlatinum,
		Title:    info.ConceptName,
		Subtitle: "First platinum",
		Date:     info.EarnedAt,
		Priority: timeline.PriorityFirstPlatinum,
	}}, nil
}

func (h *GetTimelineHandler) fastestPlatinum(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	info, err := h.trophyRepo.FastestPlatinum(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	return []*timeline.Event{{
		Type:     timeline.EventFastestPlatinum,
		Title:    info.ConceptName,
		Subtitle: fmt.Sprintf("Fastest platinum - %s", formatCompletion(info.Completion)),
		Date:     info.EarnedAt,
		Priority: timeline.PriorityFastestPlatinum,
	}}, nil
}

func (h *GetTimelineHandler) rarestPlatinum(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	info, err := h.trophyRepo.RarestPlatinum(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	return []*timeline.Event{{
		Type:     timeline.EventRarestPlatinum,
		Title:    info.ConceptName,
		Subtitle: fmt.Sprintf("Rarest platinum - %.1f%% of players", info.EarnedRate),
		Date:     info.EarnedAt,
		Priority: timeline.PriorityRarestPlatinum,
	}}, nil
}

func (h *GetTimelineHandler) platinumMilestones(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	awards, err := h.milestoneRepo.AwardsByCriteria(ctx, profileID, milestone.CriteriaPlatinumCount)
	if err != nil {
		return nil, err
	}

	events := make([]*timeline.Event, 0, len(awards))
	for _, a := range awards {
		events = append(events, &timeline.Event{
			Type:     timeline.EventMilestone,
			Title:    fmt.Sprintf("%d platinum trophies", a.RequiredValue),
			Date:     a.EarnedAt,
			Priority: timeline.MilestonePriority(a.RequiredValue),
		})
	}
	return events, nil
}

func (h *GetTimelineHandler) badgeAwards(ctx context.Context, profileID string) ([]*timeline.Event, error) {
	awards, err := h.badgeRepo.TopAwardsByTier(ctx, profileID, timeline.MaxBadgeEvents)
	if err != nil {
		return nil, err
	}

	events := make([]*timeline.Event, 0, len(awards))
	for _, a := range awards {
		events = append(events, &timeline.Event{
			Type:     timeline.EventBadge,
			Title:    a.SeriesSlug,
			Subtitle: fmt.Sprintf("Tier %d badge", a.Tier),
			Date:     a.EarnedAt,
			Priority: timeline.BadgePriority(int(a.Tier)),
		})
	}
	return events, nil
}

// formatCompletion форматирует время прохождения до платины.
func formatCompletion(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func toTimelineDTOs(events []*timeline.Event) []TimelineEventDTO {
	dtos := make([]TimelineEventDTO, len(events))
	for i, e := range events {
		dtos[i] = TimelineEventDTO{
			Type:     string(e.Type),
			Title:    e.Title,
			Subtitle: e.Subtitle,
			Date:     e.Date,
		}
	}
	return dtos
}
