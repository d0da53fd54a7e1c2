// Package timeline содержит доменную модель таймлайна профиля Plat Pursuit.
package timeline

import "sort"

// MinEvents - минимальное число событий для показа таймлайна.
// Меньше - таймлайн не показывается вовсе: это бизнес-правило
// против разреженной, неубедительной ленты, а не ошибка.
const MinEvents = 3

// MaxMilestoneEvents - максимум платиновых майлстоунов в отборе.
const MaxMilestoneEvents = 3

// MaxBadgeEvents - максимум бейдж-событий в отборе.
const MaxBadgeEvents = 2

// Select отбирает события таймлайна из кандидатов.
//
// Правила отбора:
//  1. "joined" и "first_platinum" включаются гарантированно, если есть.
//  2. При наличии "first_platinum" подавляется "first_trophy" -
//     почти дублирующая веха.
//  3. Из платиновых майлстоунов берётся не больше трёх: высший
//     и низший по приоритету, плюс один из середины списка.
//  4. Из бейдж-событий берутся два верхних по приоритету.
//  5. Оставшиеся слоты заполняются из пула по убыванию приоритета.
//  6. Итог сортируется по дате по возрастанию.
//
// Возвращает nil, если после отбора событий меньше MinEvents.
func Select(candidates []*Event, maxEvents int) []*Event {
	if maxEvents <= 0 || len(candidates) == 0 {
		return nil
	}

	hasFirstPlatinum := false
	for _, e := range candidates {
		if e.Type == EventFirstPlatinum {
			hasFirstPlatinum = true
			break
		}
	}

	var guaranteed, milestones, badges, pool []*Event
	for _, e := range candidates {
		switch e.Type {
		case EventJoined, EventFirstPlatinum:
			guaranteed = append(guaranteed, e)
		case EventFirstTrophy:
			if !hasFirstPlatinum {
				pool = append(pool, e)
			}
		case EventMilestone:
			milestones = append(milestones, e)
		case EventBadge:
			badges = append(badges, e)
		default:
			pool = append(pool, e)
		}
	}

	pool = append(pool, pickMilestones(milestones)...)
	pool = append(pool, pickBadges(badges)...)
	sortByPriority(pool)

	slots := maxEvents - len(guaranteed)
	if slots < 0 {
		slots = 0
	}
	if slots > len(pool) {
		slots = len(pool)
	}

	selected := make([]*Event, 0, len(guaranteed)+slots)
	selected = append(selected, guaranteed...)
	selected = append(selected, pool[:slots]...)

	if len(selected) < MinEvents {
		return nil
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date.Before(selected[j].Date)
	})
	return selected
}

// sortByPriority упорядочивает пул: приоритет DESC, дата ASC, заголовок ASC.
// Хвостовые ключи делают отбор детерминированным.
func sortByPriority(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Title < b.Title
	})
}

// pickMilestones оставляет не больше трёх майлстоунов: высший и низший
// по приоритету и один из середины отсортированного списка.
func pickMilestones(milestones []*Event) []*Event {
	if len(milestones) <= MaxMilestoneEvents {
		return milestones
	}

	sortByPriority(milestones)
	return []*Event{
		milestones[0],
		milestones[len(milestones)/2],
		milestones[len(milestones)-1],
	}
}

// pickBadges оставляет два верхних бейдж-события по приоритету.
func pickBadges(badges []*Event) []*Event {
	if len(badges) <= MaxBadgeEvents {
		return badges
	}
	sortByPriority(badges)
	return badges[:MaxBadgeEvents]
}
