// Package badge содержит доменную модель бейджей Plat Pursuit.
// Бейдж - это ступень серии (series): набор игр одной франшизы, за платины
// в которых профиль получает тиры от 1 до 4. Тиры образуют строгую лестницу:
// каждый следующий требует больше игр. Выданный тир никогда не отзывается,
// даже если данные трофеев позже скорректированы.
package badge

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Tier представляет тир бейджа (1-4).
type Tier int

const (
	// TierMin - минимальный тир серии.
	TierMin Tier = 1
	// TierMax - максимальный тир серии.
	TierMax Tier = 4
)

// IsValid проверяет, что тир в допустимом диапазоне.
func (t Tier) IsValid() bool {
	return t >= TierMin && t <= TierMax
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE DEFINITION
// ══════════════════════════════════════════════════════════════════════════════

// Definition представляет определение бейджа одного тира серии.
// Изменяется только кураторской правкой в админке.
type Definition struct {
	// ID - идентификатор бейджа.
	ID string

	// SeriesSlug - серия, которой принадлежит бейдж (например, "ratchet-and-clank").
	SeriesSlug string

	// SeriesName - отображаемое название серии.
	SeriesName string

	// Tier - тир бейджа внутри серии.
	Tier Tier

	// RequiredStages - сколько стейджей (платин серии) нужно для получения.
	RequiredStages int

	// ConceptIDs - набор игр, платины которых засчитываются.
	ConceptIDs []string
}

// Validate проверяет инварианты определения.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return ErrInvalidBadgeID
	}
	if d.SeriesSlug == "" {
		return ErrInvalidSeriesSlug
	}
	if !d.Tier.IsValid() {
		return ErrInvalidTier
	}
	if d.RequiredStages <= 0 {
		return ErrInvalidRequiredStages
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Progress представляет прогресс профиля по одному бейджу.
type Progress struct {
	// ProfileID - идентификатор профиля.
	ProfileID string

	// BadgeID - идентификатор бейджа.
	BadgeID string

	// SeriesSlug - серия бейджа (денормализовано для XP-агрегаций).
	SeriesSlug string

	// Tier - тир бейджа.
	Tier Tier

	// CompletedConcepts - сколько игр серии завершено (засчитанных платин).
	CompletedConcepts int

	// RequiredStages - порог бейджа.
	RequiredStages int
}

// IsComplete возвращает true, если порог бейджа достигнут.
func (p *Progress) IsComplete() bool {
	return p.CompletedConcepts >= p.RequiredStages
}

// ══════════════════════════════════════════════════════════════════════════════
// USER BADGE AWARD
// ══════════════════════════════════════════════════════════════════════════════

// Award представляет факт получения бейджа профилем.
// Создаётся один раз при пересечении порога тира и после этого не мутирует.
type Award struct {
	// ID - идентификатор награды.
	ID string

	// ProfileID - идентификатор профиля.
	ProfileID string

	// BadgeID - идентификатор бейджа.
	BadgeID string

	// SeriesSlug - серия бейджа.
	SeriesSlug string

	// Tier - тир бейджа.
	Tier Tier

	// EarnedAt - время выдачи.
	EarnedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidBadgeID - пустой идентификатор бейджа.
	ErrInvalidBadgeID = errors.New("badge: id cannot be empty")

	// ErrInvalidSeriesSlug - пустой slug серии.
	ErrInvalidSeriesSlug = errors.New("badge: series slug cannot be empty")

	// ErrInvalidTier - тир вне диапазона 1-4.
	ErrInvalidTier = errors.New("badge: tier must be between 1 and 4")

	// ErrInvalidRequiredStages - неположительный порог стейджей.
	ErrInvalidRequiredStages = errors.New("badge: required stages must be positive")

	// ErrAwardExists - награда уже выдана (повторная выдача - no-op).
	ErrAwardExists = errors.New("badge: award already exists")
)
