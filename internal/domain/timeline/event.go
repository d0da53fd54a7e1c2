// Package timeline содержит доменную модель таймлайна профиля Plat Pursuit.
// Таймлайн - это короткая подборка значимых вех (вступление, первая платина,
// майлстоуны, бейджи), отобранная из кандидатов по приоритетам и показанная
// в хронологическом порядке.
package timeline

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// EventType определяет тип события таймлайна.
type EventType string

const (
	// EventJoined - профиль присоединился к платформе.
	EventJoined EventType = "joined"

	// EventFirstTrophy - первый заработанный трофей.
	EventFirstTrophy EventType = "first_trophy"

	// EventFirstPlatinum - первая платина.
	EventFirstPlatinum EventType = "first_platinum"

	// EventMilestone - майлстоун по числу платин.
	EventMilestone EventType = "milestone_platinum"

	// EventFastestPlatinum - самая быстрая платина.
	EventFastestPlatinum EventType = "fastest_platinum"

	// EventRarestPlatinum - самая редкая платина.
	EventRarestPlatinum EventType = "rarest_platinum"

	// EventBadge - заработанный бейдж серии.
	EventBadge EventType = "badge"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRIORITIES
// ══════════════════════════════════════════════════════════════════════════════

// Фиксированные приоритеты типов. Майлстоуны и бейджи считаются
// формулами ниже; гарантированные типы приоритет фактически не
// конкурирует, но участвует в сортировке пула.
const (
	PriorityJoined          = 10.0
	PriorityFirstPlatinum   = 10.0
	PriorityFirstTrophy     = 7.0
	PriorityFastestPlatinum = 6.0
	PriorityRarestPlatinum  = 6.0

	// priorityCap - потолок приоритета майлстоунов.
	priorityCap = 10.0
)

// MilestonePriority возвращает приоритет майлстоуна по его порогу платин.
// Логарифмическая шкала: min(8 + log10(max(target, 10)) - 1, 10).
// Без неё поздние (крупные) майлстоуны полностью вытесняли бы
// качественно другие события из топ-N отбора.
func MilestonePriority(target int) float64 {
	t := float64(target)
	if t < 10 {
		t = 10
	}
	p := 8 + math.Log10(t) - 1
	if p > priorityCap {
		return priorityCap
	}
	return p
}

// BadgePriority возвращает приоритет бейдж-события: 2 + тир.
func BadgePriority(tier int) float64 {
	return float64(2 + tier)
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMELINE EVENT
// ══════════════════════════════════════════════════════════════════════════════

// Event представляет одно событие таймлайна.
// Кандидаты приходят от независимых генераторов; каждый генератор
// может вернуть ноль и более событий.
type Event struct {
	// Type - тип события.
	Type EventType `json:"type"`

	// Title - заголовок (например, название игры).
	Title string `json:"title"`

	// Subtitle - подзаголовок (контекст вехи).
	Subtitle string `json:"subtitle,omitempty"`

	// Date - дата вехи; финальный порядок таймлайна хронологический.
	Date time.Time `json:"date"`

	// Priority - приоритет отбора; на отображение не влияет.
	Priority float64 `json:"-"`
}
