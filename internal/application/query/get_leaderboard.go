// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Отдаёт страницу снапшота лидерборда. Запросы никогда не строят борд
// сами - читают только готовый снапшот, собранный батч-джобом.
// ══════════════════════════════════════════════════════════════════════════════

// Пагинация по умолчанию.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// Kind - вид борда: earners, progress или xp.
	Kind string

	// SeriesSlug - серия; пустая строка = глобальный борд.
	// Для earners серия обязательна.
	SeriesSlug string

	// ProfileID - если задан, в результат включается ранг этого профиля.
	ProfileID string

	// Page - страница, начиная с 1.
	Page int

	// PageSize - размер страницы (по умолчанию 50, максимум 100).
	PageSize int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if !leaderboard.Kind(q.Kind).IsValid() {
		return leaderboard.ErrUnknownKind
	}
	if q.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize < 0 {
		return errors.New("page size cannot be negative")
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return nil
}

// EarnersEntryDTO - запись earners-борда.
type EarnersEntryDTO struct {
	// Rank - позиция в борде (начиная с 1, без разделённых рангов).
	Rank int `json:"rank"`

	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// HighestTier - высший заработанный тир серии.
	HighestTier int `json:"highest_tier"`

	// EarnedAt - время получения высшего тира.
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// ProgressEntryDTO - запись борда прогресса по трофеям.
type ProgressEntryDTO struct {
	// Rank - позиция в борде.
	Rank int `json:"rank"`

	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// Platinum - число платин.
	Platinum int `json:"platinum"`

	// Gold - число золотых трофеев.
	Gold int `json:"gold"`

	// Silver - число серебряных трофеев.
	Silver int `json:"silver"`

	// Bronze - число бронзовых трофеев.
	Bronze int `json:"bronze"`

	// LastTrophyAt - время последнего трофея.
	LastTrophyAt *time.Time `json:"last_trophy_at,omitempty"`
}

// XPEntryDTO - запись XP-борда.
type XPEntryDTO struct {
	// Rank - позиция в борде.
	Rank int `json:"rank"`

	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// TotalXP - суммарный XP.
	TotalXP int `json:"total_xp"`

	// BadgeCount - число полностью заработанных бейджей.
	BadgeCount int `json:"badge_count"`
}

// GetLeaderboardResult содержит страницу лидерборда.
// Заполнен ровно один из срезов записей - соответствующий Kind.
type GetLeaderboardResult struct {
	// Kind - вид борда.
	Kind string `json:"kind"`

	// SeriesSlug - серия; пустая для глобальных бордов.
	SeriesSlug string `json:"series_slug,omitempty"`

	// Earners - записи earners-борда.
	Earners []EarnersEntryDTO `json:"earners,omitempty"`

	// Progress - записи прогресс-борда.
	Progress []ProgressEntryDTO `json:"progress,omitempty"`

	// XP - записи XP-борда.
	XP []XPEntryDTO `json:"xp,omitempty"`

	// TotalEntries - общее число записей борда.
	TotalEntries int `json:"total_entries"`

	// TotalPages - общее число страниц при текущем размере.
	TotalPages int `json:"total_pages"`

	// Page - текущая страница (1-based).
	Page int `json:"page"`

	// PageSize - размер страницы.
	PageSize int `json:"page_size"`

	// ProfileRank - ранг запрошенного профиля; 0, если профиля нет в борде
	// или ProfileID не задан.
	ProfileRank int `json:"profile_rank,omitempty"`

	// GeneratedAt - время сборки снапшота (не время запроса).
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы страниц лидербордов.
type GetLeaderboardHandler struct {
	store leaderboard.SnapshotStore
}

// NewGetLeaderboardHandler создаёт новый обработчик запроса лидерборда.
func NewGetLeaderboardHandler(store leaderboard.SnapshotStore) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{store: store}
}

// Handle выполняет запрос страницы лидерборда.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	// Валидация входных данных
	if err := query.Validate(); err != nil {
		return nil, shared.WrapDomainError("query", "GetLeaderboard", shared.ErrValidation, err.Error())
	}

	key, err := leaderboard.CacheKey(leaderboard.Kind(query.Kind), query.SeriesSlug)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetLeaderboard", shared.ErrValidation, err.Error())
	}

	snapshot, err := h.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, leaderboard.ErrSnapshotNotFound) {
			// Борд ещё не собирался - это пустой результат, не сбой.
			return h.emptyResult(query), nil
		}
		return nil, shared.WrapDomainError("query", "GetLeaderboard", err, "failed to load snapshot")
	}

	result := &GetLeaderboardResult{
		Kind:         string(snapshot.Kind),
		SeriesSlug:   snapshot.SeriesSlug,
		TotalEntries: snapshot.TotalEntries,
		TotalPages:   snapshot.TotalPages(query.PageSize),
		Page:         query.Page,
		PageSize:     query.PageSize,
		GeneratedAt:  snapshot.GeneratedAt,
	}

	switch snapshot.Kind {
	case leaderboard.KindEarners:
		result.Earners = toEarnersDTOs(snapshot.EarnersPage(query.Page, query.PageSize))
	case leaderboard.KindProgress:
		result.Progress = toProgressDTOs(snapshot.ProgressPage(query.Page, query.PageSize))
	case leaderboard.KindXP:
		result.XP = toXPDTOs(snapshot.XPPage(query.Page, query.PageSize))
	}

	if query.ProfileID != "" {
		result.ProfileRank = int(snapshot.ProfileRank(query.ProfileID))
	}

	return result, nil
}

// emptyResult формирует результат для ещё не собранного борда.
func (h *GetLeaderboardHandler) emptyResult(query GetLeaderboardQuery) *GetLeaderboardResult {
	return &GetLeaderboardResult{
		Kind:       query.Kind,
		SeriesSlug: query.SeriesSlug,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DTO конвертация
// ─────────────────────────────────────────────────────────────────────────────

func toEarnersDTOs(entries []*leaderboard.EarnersEntry) []EarnersEntryDTO {
	dtos := make([]EarnersEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EarnersEntryDTO{
			Rank:        int(e.Rank),
			ProfileID:   e.ProfileID,
			Username:    e.Username,
			HighestTier: e.HighestTier,
			EarnedAt:    e.EarnedAt,
		}
	}
	return dtos
}

func toProgressDTOs(entries []*leaderboard.ProgressEntry) []ProgressEntryDTO {
	dtos := make([]ProgressEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ProgressEntryDTO{
			Rank:         int(e.Rank),
			ProfileID:    e.ProfileID,
			Username:     e.Username,
			Platinum:     e.Platinum,
			Gold:         e.Gold,
			Silver:       e.Silver,
			Bronze:       e.Bronze,
			LastTrophyAt: e.LastTrophyAt,
		}
	}
	return dtos
}

func toXPDTOs(entries []*leaderboard.XPEntry) []XPEntryDTO {
	dtos := make([]XPEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = XPEntryDTO{
			Rank:       int(e.Rank),
			ProfileID:  e.ProfileID,
			Username:   e.Username,
			TotalXP:    e.TotalXP,
			BadgeCount: e.BadgeCount,
		}
	}
	return dtos
}
