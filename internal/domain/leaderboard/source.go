// Package leaderboard содержит доменную модель лидербордов Plat Pursuit.
package leaderboard

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// POPULATION SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// Source определяет порт выборки населения бордов.
// Реализация в infrastructure слое собирает неранжированные записи
// агрегатными запросами; ранги присваивает домен.
type Source interface {
	// EarnersRows возвращает по одной записи на профиль с наградой серии:
	// высший тир и время его получения. Ранги не присвоены.
	EarnersRows(ctx context.Context, seriesSlug string) ([]*EarnersEntry, error)

	// ProgressRows возвращает счётчики трофеев населения.
	// Пустой seriesSlug - все профили по всем играм; непустой -
	// только трофеи игр серии.
	ProgressRows(ctx context.Context, seriesSlug string) ([]*ProgressEntry, error)

	// XPRows возвращает XP-записи населения из денормализованной
	// таблицы разложений. Нулевые записи допустимы - их отбрасывает
	// построение снапшота.
	XPRows(ctx context.Context, seriesSlug string) ([]*XPEntry, error)

	// SeriesSlugs возвращает серии, для которых строятся серийные борды.
	SeriesSlugs(ctx context.Context) ([]string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT STORE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore определяет порт кеша снапшотов.
// Save полностью замещает снапшот по его ключу (last-writer-wins);
// при падении пересборки предыдущий снапшот остаётся читаемым.
type SnapshotStore interface {
	// Save сохраняет снапшот под его ключом.
	Save(ctx context.Context, snapshot *Snapshot) error

	// Load читает снапшот по ключу.
	// Возвращает ErrSnapshotNotFound, если снапшота нет.
	Load(ctx context.Context, key string) (*Snapshot, error)
}
