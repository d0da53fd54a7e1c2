// Package leaderboard содержит доменную модель лидербордов Plat Pursuit.
// Лидерборд - это полный снапшот населения, пересчитываемый батчем по
// расписанию. Ранги строгие: позиция 1..N без разделяемых мест, поэтому
// каждый компаратор обязан давать полный порядок - последним ключом
// всегда идёт идентификатор профиля.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию профиля в лидерборде.
// Rank начинается с 1 (первое место).
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если профиль в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// Kind определяет вид лидерборда.
type Kind string

const (
	// KindEarners - обладатели бейджей серии: выше тир, раньше дата.
	KindEarners Kind = "earners"

	// KindProgress - прогресс по трофеям: платины, золото, серебро, бронза.
	KindProgress Kind = "progress"

	// KindXP - бейдж-XP: суммарный XP, число бейджей.
	KindXP Kind = "xp"
)

// IsValid проверяет известность вида.
func (k Kind) IsValid() bool {
	switch k {
	case KindEarners, KindProgress, KindXP:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE KEYS
// ══════════════════════════════════════════════════════════════════════════════

// Ключи снапшотов в кеше. Глобальные борды имеют фиксированный ключ,
// серийные - суффикс slug серии.
const (
	keyTotalProgress = "lb_total_progress"
	keyTotalXP       = "lb_total_xp"

	keyPrefixEarners     = "lb_earners_"
	keyPrefixProgress    = "lb_progress_"
	keyPrefixCommunityXP = "lb_community_xp_"
)

// CacheKey возвращает ключ снапшота для вида и серии.
// Пустой seriesSlug означает глобальный борд; у earners глобального нет.
func CacheKey(kind Kind, seriesSlug string) (string, error) {
	switch kind {
	case KindEarners:
		if seriesSlug == "" {
			return "", ErrSeriesRequired
		}
		return keyPrefixEarners + seriesSlug, nil
	case KindProgress:
		if seriesSlug == "" {
			return keyTotalProgress, nil
		}
		return keyPrefixProgress + seriesSlug, nil
	case KindXP:
		if seriesSlug == "" {
			return keyTotalXP, nil
		}
		return keyPrefixCommunityXP + seriesSlug, nil
	}
	return "", ErrUnknownKind
}

// ══════════════════════════════════════════════════════════════════════════════
// BOARD ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

// EarnersEntry представляет запись борда обладателей бейджей серии.
// Учитывается только высший тир каждого профиля.
type EarnersEntry struct {
	// Rank - позиция в борде.
	Rank Rank `json:"rank"`

	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// HighestTier - высший заработанный тир серии.
	HighestTier int `json:"highest_tier"`

	// EarnedAt - время получения высшего тира; nil у легаси-наград
	// без метки, они сортируются после датированных.
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// ProgressEntry представляет запись борда прогресса по трофеям.
type ProgressEntry struct {
	// Rank - позиция в борде.
	Rank Rank `json:"rank"`

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

	// LastTrophyAt - время последнего трофея; при равных счётчиках
	// раньше - выше. nil сортируется последним.
	LastTrophyAt *time.Time `json:"last_trophy_at,omitempty"`
}

// XPEntry представляет запись XP-борда.
type XPEntry struct {
	// Rank - позиция в борде.
	Rank Rank `json:"rank"`

	// ProfileID - идентификатор профиля.
	ProfileID string `json:"profile_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// TotalXP - суммарный XP (стейджи + полные бейджи).
	TotalXP int `json:"total_xp"`

	// BadgeCount - число полностью заработанных бейджей.
	BadgeCount int `json:"badge_count"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SORTING & RANK ASSIGNMENT
// ══════════════════════════════════════════════════════════════════════════════

// timeLess сравнивает опциональные метки времени: раньше - лучше,
// отсутствие метки сортируется последним.
func timeLess(a, b *time.Time) (less, equal bool) {
	switch {
	case a == nil && b == nil:
		return false, true
	case a == nil:
		return false, false
	case b == nil:
		return true, false
	case a.Equal(*b):
		return false, true
	default:
		return a.Before(*b), false
	}
}

// SortEarners сортирует записи earners-борда и присваивает строгие
// ранги 1..N. Порядок: тир DESC, дата получения ASC, имя ASC, профиль ASC.
func SortEarners(entries []*EarnersEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.HighestTier != b.HighestTier {
			return a.HighestTier > b.HighestTier
		}
		if less, equal := timeLess(a.EarnedAt, b.EarnedAt); !equal {
			return less
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.ProfileID < b.ProfileID
	})
	for i, e := range entries {
		e.Rank = Rank(i + 1)
	}
}

// SortProgress сортирует записи прогресс-борда и присваивает строгие
// ранги. Порядок: платины DESC, золото DESC, серебро DESC, бронза DESC,
// последний трофей ASC, имя ASC, профиль ASC.
func SortProgress(entries []*ProgressEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Platinum != b.Platinum {
			return a.Platinum > b.Platinum
		}
		if a.Gold != b.Gold {
			return a.Gold > b.Gold
		}
		if a.Silver != b.Silver {
			return a.Silver > b.Silver
		}
		if a.Bronze != b.Bronze {
			return a.Bronze > b.Bronze
		}
		if less, equal := timeLess(a.LastTrophyAt, b.LastTrophyAt); !equal {
			return less
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.ProfileID < b.ProfileID
	})
	for i, e := range entries {
		e.Rank = Rank(i + 1)
	}
}

// SortXP сортирует записи XP-борда и присваивает строгие ранги.
// Порядок: XP DESC, число бейджей DESC, имя ASC, профиль ASC.
func SortXP(entries []*XPEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalXP != b.TotalXP {
			return a.TotalXP > b.TotalXP
		}
		if a.BadgeCount != b.BadgeCount {
			return a.BadgeCount > b.BadgeCount
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.ProfileID < b.ProfileID
	})
	for i, e := range entries {
		e.Rank = Rank(i + 1)
	}
}

// DropZeroXP отфильтровывает профили без XP: нулевые записи
// в XP-борд не попадают.
func DropZeroXP(entries []*XPEntry) []*XPEntry {
	filtered := make([]*XPEntry, 0, len(entries))
	for _, e := range entries {
		if e.TotalXP > 0 {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnknownKind - неизвестный вид борда.
	ErrUnknownKind = errors.New("leaderboard: unknown kind")

	// ErrSeriesRequired - вид борда требует серию (earners).
	ErrSeriesRequired = errors.New("leaderboard: series slug is required for this kind")

	// ErrSnapshotNotFound - снапшот не найден.
	ErrSnapshotNotFound = errors.New("leaderboard: snapshot not found")

	// ErrEmptyLeaderboard - лидерборд пуст.
	ErrEmptyLeaderboard = errors.New("leaderboard: board is empty")
)
