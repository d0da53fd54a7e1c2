// Package rating содержит доменную модель оценок игр Plat Pursuit.
// Профили оценивают сложность, гринд, удовольствие и общую оценку игры,
// плюс примерное время до платины. Скоупы базовой игры и DLC-групп
// трофеев строго разделены и никогда не смешиваются.
package rating

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATING SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// Шкала оценок.
const (
	ScoreMin = 1
	ScoreMax = 10
)

// Rating представляет оценку профиля для одного скоупа.
// Уникальна по (профиль, игра, группа); повторная отправка - upsert.
type Rating struct {
	// ID - идентификатор оценки.
	ID string

	// ProfileID - идентификатор профиля.
	ProfileID string

	// ConceptID - идентификатор игры.
	ConceptID string

	// GroupID - группа трофеев DLC; пустая - базовая игра.
	GroupID string

	// Difficulty - сложность, 1-10.
	Difficulty int

	// Grindiness - гринд, 1-10.
	Grindiness int

	// Fun - удовольствие, 1-10.
	Fun int

	// Overall - общая оценка, 1-10.
	Overall int

	// Hours - оценка времени до платины в часах.
	Hours float64

	// SubmittedAt - время первой отправки.
	SubmittedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// Validate проверяет инварианты оценки.
func (r *Rating) Validate() error {
	if r.ProfileID == "" {
		return ErrInvalidProfileID
	}
	if r.ConceptID == "" {
		return ErrInvalidConceptID
	}
	for _, score := range []int{r.Difficulty, r.Grindiness, r.Fun, r.Overall} {
		if score < ScoreMin || score > ScoreMax {
			return ErrScoreOutOfRange
		}
	}
	if r.Hours < 0 {
		return ErrNegativeHours
	}
	return nil
}

// Scope возвращает скоуп оценки.
func (r *Rating) Scope() Scope {
	return Scope{ConceptID: r.ConceptID, GroupID: r.GroupID}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCOPE
// ══════════════════════════════════════════════════════════════════════════════

// Scope идентифицирует цель агрегации: базовая игра или DLC-группа.
type Scope struct {
	// ConceptID - идентификатор игры.
	ConceptID string

	// GroupID - группа трофеев DLC; пустая - базовая игра.
	GroupID string
}

// IsBaseGame возвращает true для скоупа базовой игры.
func (s Scope) IsBaseGame() bool {
	return s.GroupID == ""
}

// CacheKey возвращает ключ кеша средних оценок скоупа.
func (s Scope) CacheKey() string {
	if s.GroupID == "" {
		return fmt.Sprintf("concept:averages:%s", s.ConceptID)
	}
	return fmt.Sprintf("concept:averages:%s:group:%s", s.ConceptID, s.GroupID)
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATED AVERAGES
// ══════════════════════════════════════════════════════════════════════════════

// TrimFraction - доля значений, отбрасываемых с каждого конца
// при усечённом среднем времени: floor(n * 0.10).
const TrimFraction = 0.10

// Averages представляет агрегированные средние оценки скоупа.
type Averages struct {
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

// ComputeAverages агрегирует оценки одного скоупа.
// Возвращает nil при нуле оценок - отсутствие данных не ошибка.
// Все поля - арифметические средние, кроме Hours: там усечённое
// среднее, гасящее выбросы (AFK-сессии, спидран-оценки).
func ComputeAverages(ratings []*Rating) *Averages {
	if len(ratings) == 0 {
		return nil
	}

	var difficulty, grindiness, fun, overall int
	hours := make([]float64, 0, len(ratings))
	for _, r := range ratings {
		difficulty += r.Difficulty
		grindiness += r.Grindiness
		fun += r.Fun
		overall += r.Overall
		hours = append(hours, r.Hours)
	}

	n := float64(len(ratings))
	return &Averages{
		Difficulty: float64(difficulty) / n,
		Grindiness: float64(grindiness) / n,
		Fun:        float64(fun) / n,
		Overall:    float64(overall) / n,
		Hours:      TrimmedMean(hours, TrimFraction),
		Count:      len(ratings),
	}
}

// TrimmedMean возвращает среднее после отбрасывания floor(n*fraction)
// значений с каждого конца. При малых выборках отбрасывается ноль
// значений и результат совпадает с обычным средним.
func TrimmedMean(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cut := int(float64(len(sorted)) * fraction)
	trimmed := sorted[cut : len(sorted)-cut]

	var sum float64
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidProfileID - пустой идентификатор профиля.
	ErrInvalidProfileID = errors.New("rating: profile id cannot be empty")

	// ErrInvalidConceptID - пустой идентификатор игры.
	ErrInvalidConceptID = errors.New("rating: concept id cannot be empty")

	// ErrScoreOutOfRange - оценка вне шкалы 1-10.
	ErrScoreOutOfRange = errors.New("rating: score must be between 1 and 10")

	// ErrNegativeHours - отрицательное время.
	ErrNegativeHours = errors.New("rating: hours cannot be negative")
)
