package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/rating"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CONCEPT AVERAGES QUERY
// Отдаёт агрегированные средние оценки скоупа (базовая игра или DLC-группа).
// Cache-aside: промах кеша пересчитывает средние из репозитория и
// прогревает кеш; батч-джоб держит горячие скоупы свежими.
// ══════════════════════════════════════════════════════════════════════════════

// GetConceptAveragesQuery содержит параметры запроса средних оценок.
type GetConceptAveragesQuery struct {
	// ConceptID - идентификатор игры.
	ConceptID string

	// GroupID - DLC-группа трофеев; пустая строка = базовая игра.
	GroupID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetConceptAveragesQuery) Validate() error {
	if q.ConceptID == "" {
		return rating.ErrInvalidConceptID
	}
	return nil
}

// ConceptAveragesDTO - средние оценки скоупа.
type ConceptAveragesDTO struct {
	// Difficulty - средняя сложность.
	Difficulty float64 `json:"difficulty"`

	// Grindiness - средний гринд.
	Grindiness float64 `json:"grindiness"`

	// Fun - среднее удовольствие.
	Fun float64 `json:"fun"`

	// Overall - средняя общая оценка.
	Overall float64 `json:"overall"`

	// Hours - усечённое среднее время до платины.
	Hours float64 `json:"hours"`

	// Count - число оценок.
	Count int `json:"count"`
}

// GetConceptAveragesResult содержит средние оценки скоупа.
type GetConceptAveragesResult struct {
	// ConceptID - идентификатор игры.
	ConceptID string `json:"concept_id"`

	// GroupID - DLC-группа; пустая для базовой игры.
	GroupID string `json:"group_id,omitempty"`

	// Averages - средние; nil, если оценок нет.
	Averages *ConceptAveragesDTO `json:"averages,omitempty"`
}

// GetConceptAveragesHandler обрабатывает запросы средних оценок.
type GetConceptAveragesHandler struct {
	ratingRepo rating.Repository
	cache      shared.KeyValueCache
	cacheTTL   time.Duration
	logger     *slog.Logger

	// resolveConcept сводит региональные релизы к каноническому
	// concept id; nil - без сведения.
	resolveConcept func(string) string
}

// NewGetConceptAveragesHandler создаёт новый обработчик запроса средних.
// cache может быть nil - тогда каждый запрос идёт в репозиторий.
func NewGetConceptAveragesHandler(
	ratingRepo rating.Repository,
	cache shared.KeyValueCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *GetConceptAveragesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetConceptAveragesHandler{
		ratingRepo: ratingRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// SetConceptResolver задаёт функцию сведения региональных релизов к
// каноническому concept id (обе стороны - чтение и запись - должны
// использовать одну и ту же).
func (h *GetConceptAveragesHandler) SetConceptResolver(resolve func(string) string) {
	h.resolveConcept = resolve
}

// Handle выполняет запрос средних оценок скоупа.
func (h *GetConceptAveragesHandler) Handle(ctx context.Context, query GetConceptAveragesQuery) (*GetConceptAveragesResult, error) {
	// Валидация входных данных
	if err := query.Validate(); err != nil {
		return nil, shared.WrapDomainError("query", "GetConceptAverages", shared.ErrValidation, err.Error())
	}

	conceptID := query.ConceptID
	if h.resolveConcept != nil {
		conceptID = h.resolveConcept(conceptID)
	}

	scope := rating.Scope{ConceptID: conceptID, GroupID: query.GroupID}
	result := &GetConceptAveragesResult{
		ConceptID: conceptID,
		GroupID:   query.GroupID,
	}

	if h.cache != nil {
		var cached rating.Averages
		if err := h.cache.Get(ctx, scope.CacheKey(), &cached); err == nil {
			result.Averages = toAveragesDTO(&cached)
			return result, nil
		}
	}

	ratings, err := h.ratingRepo.ByScope(ctx, scope)
	if err != nil {
		return nil, shared.WrapDomainError("query", "GetConceptAverages", err, "failed to load ratings")
	}

	averages := rating.ComputeAverages(ratings)
	if averages == nil {
		// Ни одной оценки - пустой результат, кеш не прогревается.
		return result, nil
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, scope.CacheKey(), averages, h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache concept averages",
				"concept_id", query.ConceptID,
				"group_id", query.GroupID,
				"error", err,
			)
		}
	}

	result.Averages = toAveragesDTO(averages)
	return result, nil
}

func toAveragesDTO(a *rating.Averages) *ConceptAveragesDTO {
	return &ConceptAveragesDTO{
		Difficulty: a.Difficulty,
		Grindiness: a.Grindiness,
		Fun:        a.Fun,
		Overall:    a.Overall,
		Hours:      a.Hours,
		Count:      a.Count,
	}
}
