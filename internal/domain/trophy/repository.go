package trophy

import (
	"context"
	"time"
)

// Repository определяет порт чтения/записи event store трофеев.
// Все производные подсистемы (прогресс, XP, лидерборды, таймлайн) читают
// только через этот порт.
type Repository interface {
	// Upsert создаёт или обновляет событие по ключу (profile, trophy).
	// Вызывается только синхронизацией с PSN.
	Upsert(ctx context.Context, event *EarnedTrophyEvent) error

	// EarnedEvents возвращает все заработанные трофеи профиля.
	EarnedEvents(ctx context.Context, profileID string) ([]*EarnedTrophyEvent, error)

	// CachedCounts возвращает денормализованные счётчики профиля.
	// Быстрый путь: может отставать от event store.
	CachedCounts(ctx context.Context, profileID string) (Counts, error)

	// CountsLive пересчитывает счётчики напрямую из event store.
	// Медленный, но корректный путь для критичных чтений
	// (контекст уведомлений).
	CountsLive(ctx context.Context, profileID string) (Counts, error)

	// RefreshCachedCounts пересобирает денормализованные счётчики всех
	// профилей из event store. Вызывается батч-джобом.
	RefreshCachedCounts(ctx context.Context) error

	// MonthlyCounts возвращает счётчики за календарный месяц (UTC),
	// содержащий from. Используется месячными типами критериев.
	MonthlyCounts(ctx context.Context, profileID string, from time.Time) (Counts, error)

	// PlaytimeSeconds возвращает суммарное игровое время профиля в секундах.
	PlaytimeSeconds(ctx context.Context, profileID string) (int64, error)

	// CompletedConceptCount возвращает число игр со 100% трофеев.
	CompletedConceptCount(ctx context.Context, profileID string) (int, error)

	// FirstEarned возвращает самый ранний заработанный трофей профиля
	// с временной меткой; nil - если таких нет.
	FirstEarned(ctx context.Context, profileID string) (*EarnedTrophyEvent, error)

	// FirstPlatinum возвращает первую платину профиля; nil - если платин нет.
	FirstPlatinum(ctx context.Context, profileID string) (*PlatinumInfo, error)

	// FastestPlatinum возвращает платину с минимальным временем прохождения.
	FastestPlatinum(ctx context.Context, profileID string) (*PlatinumInfo, error)

	// RarestPlatinum возвращает платину с минимальным EarnedRate.
	RarestPlatinum(ctx context.Context, profileID string) (*PlatinumInfo, error)
}
