// Package leaderboard содержит доменную модель лидербордов Plat Pursuit.
package leaderboard

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot представляет полностью построенный лидерборд одного ключа.
// Снапшот собирается в памяти целиком и атомарно заменяет предыдущий
// в кеше (last-writer-wins по ключу). Заполнен ровно один из срезов
// записей - соответствующий Kind.
type Snapshot struct {
	// ID - уникальный идентификатор снапшота.
	ID string `json:"id"`

	// Key - ключ кеша, который снапшот замещает.
	Key string `json:"key"`

	// Kind - вид борда.
	Kind Kind `json:"kind"`

	// SeriesSlug - серия; пустая для глобальных бордов.
	SeriesSlug string `json:"series_slug,omitempty"`

	// GeneratedAt - время построения.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalEntries - число записей.
	TotalEntries int `json:"total_entries"`

	// Earners - записи earners-борда (Kind == KindEarners).
	Earners []*EarnersEntry `json:"earners,omitempty"`

	// Progress - записи прогресс-борда (Kind == KindProgress).
	Progress []*ProgressEntry `json:"progress,omitempty"`

	// XP - записи XP-борда (Kind == KindXP).
	XP []*XPEntry `json:"xp,omitempty"`
}

// NewEarnersSnapshot строит снапшот earners-борда: сортирует записи
// и присваивает строгие ранги.
func NewEarnersSnapshot(id, seriesSlug string, entries []*EarnersEntry) (*Snapshot, error) {
	key, err := CacheKey(KindEarners, seriesSlug)
	if err != nil {
		return nil, err
	}
	SortEarners(entries)
	return &Snapshot{
		ID:           id,
		Key:          key,
		Kind:         KindEarners,
		SeriesSlug:   seriesSlug,
		GeneratedAt:  time.Now().UTC(),
		TotalEntries: len(entries),
		Earners:      entries,
	}, nil
}

// NewProgressSnapshot строит снапшот прогресс-борда.
// Пустой seriesSlug означает глобальный борд.
func NewProgressSnapshot(id, seriesSlug string, entries []*ProgressEntry) (*Snapshot, error) {
	key, err := CacheKey(KindProgress, seriesSlug)
	if err != nil {
		return nil, err
	}
	SortProgress(entries)
	return &Snapshot{
		ID:           id,
		Key:          key,
		Kind:         KindProgress,
		SeriesSlug:   seriesSlug,
		GeneratedAt:  time.Now().UTC(),
		TotalEntries: len(entries),
		Progress:     entries,
	}, nil
}

// NewXPSnapshot строит снапшот XP-борда. Профили с нулевым XP
// отбрасываются до ранжирования.
func NewXPSnapshot(id, seriesSlug string, entries []*XPEntry) (*Snapshot, error) {
	key, err := CacheKey(KindXP, seriesSlug)
	if err != nil {
		return nil, err
	}
	entries = DropZeroXP(entries)
	SortXP(entries)
	return &Snapshot{
		ID:           id,
		Key:          key,
		Kind:         KindXP,
		SeriesSlug:   seriesSlug,
		GeneratedAt:  time.Now().UTC(),
		TotalEntries: len(entries),
		XP:           entries,
	}, nil
}

// IsEmpty возвращает true, если снапшот пуст.
func (s *Snapshot) IsEmpty() bool {
	return s.TotalEntries == 0
}

// Count возвращает число записей.
func (s *Snapshot) Count() int {
	return s.TotalEntries
}

// pageBounds возвращает границы страницы [from:to) для n записей.
// page начинается с 1.
func pageBounds(n, page, pageSize int) (int, int) {
	if page < 1 || pageSize <= 0 {
		return 0, 0
	}
	from := (page - 1) * pageSize
	if from >= n {
		return 0, 0
	}
	to := from + pageSize
	if to > n {
		to = n
	}
	return from, to
}

// EarnersPage возвращает страницу earners-борда.
func (s *Snapshot) EarnersPage(page, pageSize int) []*EarnersEntry {
	from, to := pageBounds(len(s.Earners), page, pageSize)
	if from == to {
		return nil
	}
	result := make([]*EarnersEntry, to-from)
	copy(result, s.Earners[from:to])
	return result
}

// ProgressPage возвращает страницу прогресс-борда.
func (s *Snapshot) ProgressPage(page, pageSize int) []*ProgressEntry {
	from, to := pageBounds(len(s.Progress), page, pageSize)
	if from == to {
		return nil
	}
	result := make([]*ProgressEntry, to-from)
	copy(result, s.Progress[from:to])
	return result
}

// XPPage возвращает страницу XP-борда.
func (s *Snapshot) XPPage(page, pageSize int) []*XPEntry {
	from, to := pageBounds(len(s.XP), page, pageSize)
	if from == to {
		return nil
	}
	result := make([]*XPEntry, to-from)
	copy(result, s.XP[from:to])
	return result
}

// TotalPages возвращает общее количество страниц.
func (s *Snapshot) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := s.TotalEntries / pageSize
	if s.TotalEntries%pageSize != 0 {
		pages++
	}
	return pages
}

// ProfileRank возвращает ранг профиля в снапшоте; 0, если профиля нет.
func (s *Snapshot) ProfileRank(profileID string) Rank {
	switch s.Kind {
	case KindEarners:
		for _, e := range s.Earners {
			if e.ProfileID == profileID {
				return e.Rank
			}
		}
	case KindProgress:
		for _, e := range s.Progress {
			if e.ProfileID == profileID {
				return e.Rank
			}
		}
	case KindXP:
		for _, e := range s.XP {
			if e.ProfileID == profileID {
				return e.Rank
			}
		}
	}
	return 0
}

// String возвращает строковое представление для логирования.
func (s *Snapshot) String() string {
	return fmt.Sprintf(
		"Snapshot{Key: %s, Kind: %s, Entries: %d, At: %s}",
		s.Key, s.Kind, s.TotalEntries, s.GeneratedAt.Format(time.RFC3339),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT DIFF
// ══════════════════════════════════════════════════════════════════════════════

// Diff представляет изменение рангов между двумя снапшотами одного ключа.
// Джоб пересборки логирует его сводку; положительное значение - подъём.
type Diff struct {
	// RankChanges - изменения рангов по профилям (старый минус новый).
	RankChanges map[string]int

	// NewProfiles - профили, которых не было в старом снапшоте.
	NewProfiles []string

	// RemovedProfiles - профили, выпавшие из борда.
	RemovedProfiles []string
}

// profileRanks возвращает карту профиль -> ранг снапшота.
func (s *Snapshot) profileRanks() map[string]Rank {
	ranks := make(map[string]Rank, s.TotalEntries)
	switch s.Kind {
	case KindEarners:
		for _, e := range s.Earners {
			ranks[e.ProfileID] = e.Rank
		}
	case KindProgress:
		for _, e := range s.Progress {
			ranks[e.ProfileID] = e.Rank
		}
	case KindXP:
		for _, e := range s.XP {
			ranks[e.ProfileID] = e.Rank
		}
	}
	return ranks
}

// ComputeDiff вычисляет изменение рангов между снапшотами.
// oldSnapshot может быть nil (первая сборка) - тогда все профили новые.
func ComputeDiff(oldSnapshot, newSnapshot *Snapshot) *Diff {
	diff := &Diff{RankChanges: make(map[string]int)}
	if newSnapshot == nil {
		return diff
	}

	newRanks := newSnapshot.profileRanks()
	if oldSnapshot == nil {
		for id := range newRanks {
			diff.NewProfiles = append(diff.NewProfiles, id)
		}
		return diff
	}

	oldRanks := oldSnapshot.profileRanks()
	for id, newRank := range newRanks {
		oldRank, ok := oldRanks[id]
		if !ok {
			diff.NewProfiles = append(diff.NewProfiles, id)
			continue
		}
		if change := int(oldRank) - int(newRank); change != 0 {
			diff.RankChanges[id] = change
		}
	}
	for id := range oldRanks {
		if _, ok := newRanks[id]; !ok {
			diff.RemovedProfiles = append(diff.RemovedProfiles, id)
		}
	}
	return diff
}

// HasChanges возвращает true, если между снапшотами есть различия.
func (d *Diff) HasChanges() bool {
	return len(d.RankChanges) > 0 || len(d.NewProfiles) > 0 || len(d.RemovedProfiles) > 0
}
