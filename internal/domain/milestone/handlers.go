package milestone

import "context"

// StatsSource - узкий порт статистики профиля для обработчиков прогресса.
// Реализуется адаптером над репозиториями трофеев и профилей;
// обработчики не знают, откуда берутся числа.
type StatsSource interface {
	// PlatinumCount - число заработанных платин.
	PlatinumCount(ctx context.Context, profileID string) (int, error)

	// TrophyCount - суммарное число заработанных трофеев.
	TrophyCount(ctx context.Context, profileID string) (int, error)

	// PlaytimeSeconds - суммарное игровое время в секундах.
	PlaytimeSeconds(ctx context.Context, profileID string) (int64, error)

	// CompletedGameCount - число игр со 100% трофеев.
	CompletedGameCount(ctx context.Context, profileID string) (int, error)

	// AccountAgeDays - возраст аккаунта в днях.
	AccountAgeDays(ctx context.Context, profileID string) (int, error)

	// PSNLinked - привязан ли PSN-аккаунт.
	PSNLinked(ctx context.Context, profileID string) (bool, error)

	// IsPremium - оформлен ли премиум.
	IsPremium(ctx context.Context, profileID string) (bool, error)

	// MonthlyPlatinumCount - платины текущего календарного месяца (UTC).
	MonthlyPlatinumCount(ctx context.Context, profileID string) (int, error)

	// MonthlyTrophyCount - трофеи текущего календарного месяца (UTC).
	MonthlyTrophyCount(ctx context.Context, profileID string) (int, error)
}

// DefaultRegistry собирает реестр со всеми штатными обработчиками
// поверх источника статистики.
func DefaultRegistry(src StatsSource) *Registry {
	r := NewRegistry()

	r.Register(CriteriaPlatinumCount, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.PlatinumCount(ctx, profileID)
	}))

	r.Register(CriteriaTrophyCount, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.TrophyCount(ctx, profileID)
	}))

	r.Register(CriteriaPlaytimeHours, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		seconds, err := src.PlaytimeSeconds(ctx, profileID)
		if err != nil {
			return 0, err
		}
		return int(seconds / 3600), nil
	}))

	r.Register(CriteriaGamesCompleted, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.CompletedGameCount(ctx, profileID)
	}))

	r.Register(CriteriaAccountAgeDays, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.AccountAgeDays(ctx, profileID)
	}))

	r.Register(CriteriaPSNLinked, boolHandler(src.PSNLinked))
	r.Register(CriteriaIsPremium, boolHandler(src.IsPremium))

	r.Register(CriteriaMonthlyPlatinum, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.MonthlyPlatinumCount(ctx, profileID)
	}))

	r.Register(CriteriaMonthlyTrophy, HandlerFunc(func(ctx context.Context, profileID string) (int, error) {
		return src.MonthlyTrophyCount(ctx, profileID)
	}))

	return r
}

// boolHandler переводит бинарный признак в значение прогресса 0/1.
func boolHandler(fn func(ctx context.Context, profileID string) (bool, error)) HandlerFunc {
	return func(ctx context.Context, profileID string) (int, error) {
		ok, err := fn(ctx, profileID)
		if err != nil {
			return 0, err
		}
		if ok {
			return 1, nil
		}
		return 0, nil
	}
}
