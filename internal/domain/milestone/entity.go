// Package milestone содержит доменную модель майлстоунов Plat Pursuit.
// Майлстоун - это ступень лестницы по одному типу критерия (число платин,
// игровое время, возраст аккаунта и т.д.). Внутри типа определения
// упорядочены по required_value и образуют лестницу тиров. Разовые типы
// (psn_linked, is_premium, месячные) лестницы не имеют - они бинарны.
package milestone

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA TYPES
// ══════════════════════════════════════════════════════════════════════════════

// CriteriaType представляет тип критерия майлстоуна.
type CriteriaType string

const (
	// CriteriaPlatinumCount - число заработанных платин.
	CriteriaPlatinumCount CriteriaType = "platinum_count"

	// CriteriaTrophyCount - суммарное число заработанных трофеев.
	CriteriaTrophyCount CriteriaType = "trophy_count"

	// CriteriaPlaytimeHours - игровое время в часах.
	CriteriaPlaytimeHours CriteriaType = "playtime_hours"

	// CriteriaGamesCompleted - число игр со 100% трофеев.
	CriteriaGamesCompleted CriteriaType = "games_completed"

	// CriteriaAccountAgeDays - возраст аккаунта в днях.
	CriteriaAccountAgeDays CriteriaType = "account_age_days"

	// CriteriaPSNLinked - разовый: профиль привязал PSN-аккаунт.
	CriteriaPSNLinked CriteriaType = "psn_linked"

	// CriteriaIsPremium - разовый: профиль оформил премиум.
	CriteriaIsPremium CriteriaType = "is_premium"

	// CriteriaMonthlyPlatinum - разовый месячный: платина в календарном месяце.
	CriteriaMonthlyPlatinum CriteriaType = "monthly_platinum"

	// CriteriaMonthlyTrophy - разовый месячный: трофей в календарном месяце.
	CriteriaMonthlyTrophy CriteriaType = "monthly_trophy"
)

// oneOffTypes - фиксированный набор разовых типов без лестницы.
var oneOffTypes = map[CriteriaType]struct{}{
	CriteriaPSNLinked:       {},
	CriteriaIsPremium:       {},
	CriteriaMonthlyPlatinum: {},
	CriteriaMonthlyTrophy:   {},
}

// IsOneOff возвращает true для разовых (бинарных) типов критериев.
func (c CriteriaType) IsOneOff() bool {
	_, ok := oneOffTypes[c]
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE DEFINITION
// ══════════════════════════════════════════════════════════════════════════════

// Definition представляет определение одного майлстоуна.
// Внутри одного CriteriaType определения образуют лестницу,
// упорядоченную по RequiredValue по возрастанию.
type Definition struct {
	// ID - идентификатор майлстоуна.
	ID string

	// Name - отображаемое название.
	Name string

	// CriteriaType - тип критерия.
	CriteriaType CriteriaType

	// RequiredValue - порог значения прогресса для получения.
	// Для разовых типов всегда 1.
	RequiredValue int
}

// Validate проверяет инварианты определения.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return ErrInvalidMilestoneID
	}
	if d.CriteriaType == "" {
		return ErrInvalidCriteriaType
	}
	if d.RequiredValue <= 0 {
		return ErrInvalidRequiredValue
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER MILESTONE AWARD
// ══════════════════════════════════════════════════════════════════════════════

// Award представляет факт получения майлстоуна профилем.
// Жизненный цикл тот же, что у награды бейджа: создаётся один раз
// при пересечении порога и никогда не отзывается.
type Award struct {
	// ID - идентификатор награды.
	ID string

	// ProfileID - идентификатор профиля.
	ProfileID string

	// MilestoneID - идентификатор майлстоуна.
	MilestoneID string

	// CriteriaType - тип критерия (денормализовано для выборок таймлайна).
	CriteriaType CriteriaType

	// RequiredValue - порог майлстоуна на момент выдачи.
	RequiredValue int

	// EarnedAt - время выдачи.
	EarnedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidMilestoneID - пустой идентификатор майлстоуна.
	ErrInvalidMilestoneID = errors.New("milestone: id cannot be empty")

	// ErrInvalidCriteriaType - пустой тип критерия.
	ErrInvalidCriteriaType = errors.New("milestone: criteria type cannot be empty")

	// ErrInvalidRequiredValue - неположительный порог.
	ErrInvalidRequiredValue = errors.New("milestone: required value must be positive")

	// ErrUnknownCriteriaType - тип критерия без зарегистрированного обработчика.
	ErrUnknownCriteriaType = errors.New("milestone: unknown criteria type")

	// ErrAwardExists - награда уже выдана (повторная выдача - no-op).
	ErrAwardExists = errors.New("milestone: award already exists")
)
