// Package main - точка входа фоновых процессов (Worker) Plat Pursuit.
//
// Worker отвечает за периодические задачи:
// - Пересборка снапшотов лидербордов (глобальных и по сериям)
// - Пересчёт community-средних оценок игр
//
// Лидерборды пересчитываются только здесь: API читает готовые
// снапшоты из Redis и никогда не строит их на запросе. Пока worker
// жив, читатели видят консистентные страницы с общего момента среза.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/HuntedCode/plat-pursuit/config"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/messaging"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/postgres"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/redis"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/scheduler"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/scheduler/jobs"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	// Снапшоты передаются в API через Redis; без него worker бесполезен.
	if cfg.Redis.Disabled {
		return errors.New("worker requires Redis: leaderboard snapshots are handed to the API through it")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Plat Pursuit Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПОДКЛЮЧЕНИЕ К REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
	redisCache, err := redis.NewCache(redisConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = redisCache.Close()
	}()
	snapshotStore := redis.NewSnapshotCache(redisCache)
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	profileRepo := postgres.NewProfileRepository(dbConn)
	trophyRepo := postgres.NewTrophyRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	ratingRepo := postgres.NewRatingRepository(dbConn)
	boardSource := postgres.NewLeaderboardSource(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	// Шина поверх Redis Pub/Sub: события о пересборке лидербордов и
	// наградах доходят до процесса API, а не только до локальных
	// подписчиков.
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	eventBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
		Client:         messaging.NewCacheRedisClient(redisCache),
		LocalBusConfig: localBusConfig,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if err := eventBus.SubscribeAll(func(event shared.Event) error {
		log.Info("domain event",
			"type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Scheduler.Enabled {
		return errors.New("SCHEDULER_ENABLED=false leaves the worker with no jobs, nothing to do")
	}

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:        log,
		Timezone:      cfg.App.Location,
		EnableMetrics: cfg.Observability.MetricsEnabled,
	})

	features := cfg.Features

	rebuildJob := jobs.NewRebuildLeaderboardsJob(
		profileRepo, trophyRepo, badgeRepo,
		boardSource, snapshotStore,
		eventBus, log,
		jobs.RebuildLeaderboardsConfig{
			RefreshTrophyCounts: cfg.Scheduler.RefreshTrophyCounts,
			RecomputeXP:         cfg.Scheduler.RecomputeXP,
			LogDiffs:            features.IsEnabled(config.FeatureLeaderboardDiffLogging, ""),
			Timeout:             cfg.Scheduler.JobTimeout,
		},
	)
	rebuildSchedule, err := scheduleFor(cfg.Scheduler.LeaderboardRebuildCron, cfg.Scheduler.LeaderboardRebuildInterval)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_LEADERBOARD_CRON: %w", err)
	}
	if err := sched.Register(rebuildJob, rebuildSchedule); err != nil {
		return fmt.Errorf("failed to register %s: %w", rebuildJob.Name(), err)
	}

	if features.IsEnabled(config.FeatureRatingsCommunityAverages, "") {
		statsJob := jobs.NewRecomputeCommunityStatsJob(
			ratingRepo, redisCache, log,
			jobs.RecomputeCommunityStatsConfig{
				CacheTTL: cfg.Cache.ConceptAveragesTTL,
				Timeout:  cfg.Scheduler.JobTimeout,
			},
		)
		statsSchedule, err := scheduleFor(cfg.Scheduler.CommunityStatsCron, cfg.Scheduler.CommunityStatsInterval)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_COMMUNITY_STATS_CRON: %w", err)
		}
		if err := sched.Register(statsJob, statsSchedule); err != nil {
			return fmt.Errorf("failed to register %s: %w", statsJob.Name(), err)
		}
	} else {
		log.Info("community averages recompute disabled by feature flag")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ЗАПУСК ПЛАНИРОВЩИКА
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Первая сборка сразу: свежий процесс не должен ждать целый
	// интервал, пока в Redis нет ни одного снапшота.
	go func() {
		if _, err := sched.RunNow(ctx, rebuildJob.Name()); err != nil {
			log.Error("initial leaderboard rebuild failed", "error", err)
		}
	}()

	log.Info("Plat Pursuit Worker is running",
		"rebuild_interval", cfg.Scheduler.LeaderboardRebuildInterval.String(),
		"community_stats_interval", cfg.Scheduler.CommunityStatsInterval.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	if err := sched.Stop(); err != nil {
		log.Error("scheduler stop failed", "error", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() || cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// scheduleFor возвращает cron-расписание, если задано выражение,
// иначе интервальное.
func scheduleFor(cronExpr string, interval time.Duration) (scheduler.Schedule, error) {
	if cronExpr != "" {
		return scheduler.NewCronSchedule(cronExpr)
	}
	return scheduler.NewIntervalSchedule(interval), nil
}

// redisConfigFrom переносит настройки Redis из конфигурации приложения.
func redisConfigFrom(cfg *config.Config) redis.Config {
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
	return redisCfg
}
