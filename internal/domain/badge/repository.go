package badge

import "context"

// Repository определяет порт хранилища бейджей.
type Repository interface {
	// DefinitionsBySeries возвращает лестницу бейджей серии,
	// отсортированную по тиру.
	DefinitionsBySeries(ctx context.Context, seriesSlug string) ([]*Definition, error)

	// SeriesSlugs возвращает все известные серии.
	SeriesSlugs(ctx context.Context) ([]string, error)

	// ProgressByProfile возвращает все записи прогресса профиля.
	ProgressByProfile(ctx context.Context, profileID string) ([]Progress, error)

	// ProgressBySeries возвращает записи прогресса профиля по одной серии.
	ProgressBySeries(ctx context.Context, profileID, seriesSlug string) ([]Progress, error)

	// FullyEarnedCount возвращает число полностью заработанных бейджей
	// профиля (distinct по бейджу).
	FullyEarnedCount(ctx context.Context, profileID string) (int, error)

	// AwardsByProfile возвращает награды профиля.
	AwardsByProfile(ctx context.Context, profileID string) ([]*Award, error)

	// TopAwardsByTier возвращает до limit наград профиля с наибольшим
	// тиром (для таймлайна).
	TopAwardsByTier(ctx context.Context, profileID string, limit int) ([]*Award, error)

	// CreateAward выдаёт награду, если она ещё не выдана.
	// Возвращает false без ошибки, если награда уже существует:
	// гонка двух синхронизаций разрешается уникальным ограничением
	// и блокировкой строки, а не ретраями приложения.
	CreateAward(ctx context.Context, award *Award) (bool, error)

	// CachedBreakdown читает денормализованное разложение XP профиля.
	// Отсутствие записи даёт нулевой Breakdown без ошибки.
	CachedBreakdown(ctx context.Context, profileID string) (Breakdown, error)

	// StoreBreakdown записывает денормализованное разложение XP.
	// Вызывается батч-пересчётом лидербордов.
	StoreBreakdown(ctx context.Context, profileID string, b Breakdown) error

	// StoreBreakdowns записывает пачку разложений одним батчем.
	StoreBreakdowns(ctx context.Context, breakdowns map[string]Breakdown) error
}
