// Package trophy содержит доменную модель событий получения трофеев.
// Это event store всей системы: append-only запись "профиль заработал трофей",
// из которой выводятся прогресс, XP, лидерборды и таймлайн. События никогда
// не удаляются (кроме удаления аккаунта) и мутируют только при синхронизации
// с PSN.
package trophy

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Grade представляет достоинство трофея.
type Grade string

const (
	GradeBronze   Grade = "bronze"
	GradeSilver   Grade = "silver"
	GradeGold     Grade = "gold"
	GradePlatinum Grade = "platinum"
)

// IsValid проверяет корректность достоинства.
func (g Grade) IsValid() bool {
	switch g {
	case GradeBronze, GradeSilver, GradeGold, GradePlatinum:
		return true
	}
	return false
}

// Weight возвращает вес достоинства для сортировок (платина старше золота).
func (g Grade) Weight() int {
	switch g {
	case GradePlatinum:
		return 4
	case GradeGold:
		return 3
	case GradeSilver:
		return 2
	case GradeBronze:
		return 1
	default:
		return 0
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EARNED TROPHY EVENT
// ══════════════════════════════════════════════════════════════════════════════

// EarnedTrophyEvent представляет одно событие "профиль заработал трофей".
// Уникальность: (ProfileID, TrophyID). Запись создаётся при первой
// синхронизации трофея и обновляется при последующих (PSN может уточнить
// дату или флаг earned).
type EarnedTrophyEvent struct {
	// ProfileID - идентификатор профиля.
	ProfileID string

	// TrophyID - идентификатор трофея в каталоге.
	TrophyID string

	// ConceptID - игра (concept), к которой относится трофей.
	ConceptID string

	// GroupID - DLC-группа трофеев; пустая строка = базовая игра.
	GroupID string

	// Grade - достоинство трофея.
	Grade Grade

	// Earned - заработан ли трофей.
	Earned bool

	// EarnedAt - время получения. Может быть nil: PSN отдаёт часть
	// старых трофеев без временной метки.
	EarnedAt *time.Time

	// EarnedRate - редкость трофея (процент игроков, 0-100).
	EarnedRate float64
}

// Validate проверяет инварианты события.
func (e *EarnedTrophyEvent) Validate() error {
	if e.ProfileID == "" {
		return ErrInvalidProfileID
	}
	if e.TrophyID == "" {
		return ErrInvalidTrophyID
	}
	if !e.Grade.IsValid() {
		return ErrInvalidGrade
	}
	if e.Earned && e.EarnedAt != nil && e.EarnedAt.After(time.Now().UTC().Add(time.Minute)) {
		return ErrFutureEarnedAt
	}
	return nil
}

// HasTimestamp возвращает true, если у события есть дата получения.
func (e *EarnedTrophyEvent) HasTimestamp() bool {
	return e.EarnedAt != nil
}

// IsBaseGame возвращает true для трофеев базовой игры (не DLC).
func (e *EarnedTrophyEvent) IsBaseGame() bool {
	return e.GroupID == ""
}

// ══════════════════════════════════════════════════════════════════════════════
// COUNTS (денормализованное представление)
// ══════════════════════════════════════════════════════════════════════════════

// Counts содержит счётчики заработанных трофеев профиля по достоинствам.
// Денормализованная копия может отставать от event store - живой пересчёт
// доступен через Repository.CountsLive.
type Counts struct {
	// Platinum - количество платиновых трофеев.
	Platinum int

	// Gold - количество золотых трофеев.
	Gold int

	// Silver - количество серебряных трофеев.
	Silver int

	// Bronze - количество бронзовых трофеев.
	Bronze int

	// LastTrophyAt - дата последнего заработанного трофея.
	LastTrophyAt *time.Time
}

// Total возвращает суммарное количество трофеев.
func (c Counts) Total() int {
	return c.Platinum + c.Gold + c.Silver + c.Bronze
}

// IsZero возвращает true, если у профиля нет ни одного трофея.
func (c Counts) IsZero() bool {
	return c.Total() == 0
}

// ══════════════════════════════════════════════════════════════════════════════
// PLATINUM INFO (для таймлайна)
// ══════════════════════════════════════════════════════════════════════════════

// PlatinumInfo описывает одну заработанную платину с метаданными игры.
// Используется генераторами таймлайна (первая/самая быстрая/самая редкая).
type PlatinumInfo struct {
	// ProfileID - идентификатор профиля.
	ProfileID string

	// ConceptID - игра.
	ConceptID string

	// ConceptName - название игры для отображения.
	ConceptName string

	// EarnedAt - время получения платины.
	EarnedAt time.Time

	// EarnedRate - редкость платины (процент игроков).
	EarnedRate float64

	// Completion - время от первого трофея в игре до платины.
	Completion time.Duration
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidProfileID - пустой идентификатор профиля.
	ErrInvalidProfileID = errors.New("trophy: profile id cannot be empty")

	// ErrInvalidTrophyID - пустой идентификатор трофея.
	ErrInvalidTrophyID = errors.New("trophy: trophy id cannot be empty")

	// ErrInvalidGrade - неизвестное достоинство трофея.
	ErrInvalidGrade = errors.New("trophy: invalid grade")

	// ErrFutureEarnedAt - дата получения в будущем.
	ErrFutureEarnedAt = errors.New("trophy: earned_at cannot be in the future")
)
