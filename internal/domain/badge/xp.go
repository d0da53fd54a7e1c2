package badge

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// XP CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

// XP за один завершённый стейдж (концепт) по тирам бейджа.
// Нечётные тиры - основные ступени серии, чётные - промежуточные,
// поэтому множители чередуются.
const (
	XPStageTier1 = 250
	XPStageTier2 = 75
	XPStageTier3 = 250
	XPStageTier4 = 75

	// XPFullBadge - бонус за полностью заработанный бейдж.
	XPFullBadge = 3000
)

// StageMultiplier возвращает XP за один стейдж для данного тира.
// Неизвестный тир даёт 0 - отсутствие данных никогда не ошибка.
func StageMultiplier(t Tier) int {
	switch t {
	case 1:
		return XPStageTier1
	case 2:
		return XPStageTier2
	case 3:
		return XPStageTier3
	case 4:
		return XPStageTier4
	default:
		return 0
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// XP BREAKDOWN
// ══════════════════════════════════════════════════════════════════════════════

// Breakdown представляет разложение XP профиля на компоненты.
// Инвариант: Total == ProgressXP + BadgeXP.
type Breakdown struct {
	// Total - суммарный XP.
	Total int

	// ProgressXP - XP за завершённые стейджи всех бейджей.
	ProgressXP int

	// BadgeXP - бонусный XP за полностью заработанные бейджи.
	BadgeXP int
}

// ProgressXP считает стейдж-компонент XP по записям прогресса.
func ProgressXP(records []Progress) int {
	total := 0
	for _, r := range records {
		total += r.CompletedConcepts * StageMultiplier(r.Tier)
	}
	return total
}

// BadgeXP считает бонусный компонент за fullyEarned полных бейджей.
func BadgeXP(fullyEarned int) int {
	if fullyEarned <= 0 {
		return 0
	}
	return fullyEarned * XPFullBadge
}

// ComputeBreakdown собирает полное разложение XP из записей прогресса
// и числа полных бейджей.
func ComputeBreakdown(records []Progress, fullyEarned int) Breakdown {
	progressXP := ProgressXP(records)
	badgeXP := BadgeXP(fullyEarned)
	return Breakdown{
		Total:      progressXP + badgeXP,
		ProgressXP: progressXP,
		BadgeXP:    badgeXP,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// XP CALCULATOR (живой и кешированный пути)
// ══════════════════════════════════════════════════════════════════════════════

// Calculator вычисляет XP профиля через порт репозитория.
//
// Два явных входа вместо одного с флагом "свежести":
//   - TotalXPLive - честный пересчёт из event store; обязателен для
//     критичных чтений (контекст уведомлений).
//   - TotalXPCached - денормализованная таблица; допустим для батчевых
//     лидербордов, где отставание приемлемо.
type Calculator struct {
	repo Repository
}

// NewCalculator создаёт калькулятор XP.
func NewCalculator(repo Repository) *Calculator {
	return &Calculator{repo: repo}
}

// SeriesXP возвращает стейдж-XP профиля по одной серии.
func (c *Calculator) SeriesXP(ctx context.Context, profileID, seriesSlug string) (int, error) {
	records, err := c.repo.ProgressBySeries(ctx, profileID, seriesSlug)
	if err != nil {
		return 0, err
	}
	return ProgressXP(records), nil
}

// TotalXPLive пересчитывает полное разложение XP с нуля.
func (c *Calculator) TotalXPLive(ctx context.Context, profileID string) (Breakdown, error) {
	records, err := c.repo.ProgressByProfile(ctx, profileID)
	if err != nil {
		return Breakdown{}, err
	}

	fullyEarned, err := c.repo.FullyEarnedCount(ctx, profileID)
	if err != nil {
		return Breakdown{}, err
	}

	return ComputeBreakdown(records, fullyEarned), nil
}

// TotalXPCached читает разложение XP из денормализованной таблицы.
// Отсутствие записи - это нулевой XP, не ошибка.
func (c *Calculator) TotalXPCached(ctx context.Context, profileID string) (Breakdown, error) {
	return c.repo.CachedBreakdown(ctx, profileID)
}
