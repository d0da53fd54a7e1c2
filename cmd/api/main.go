// Package main - точка входа REST API Plat Pursuit.
//
// API обслуживает читающую сторону платформы:
// - Страницы лидербордов из предрассчитанных снапшотов
// - Прогресс профиля по лестницам майлстоунов и XP
// - Хронология значимых событий профиля
// - Community-оценки игр (чтение и приём)
//
// Снапшоты лидербордов строит отдельный worker-процесс; API только
// читает их из Redis. Всё остальное считается на лету поверх Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/HuntedCode/plat-pursuit/config"
	"github.com/HuntedCode/plat-pursuit/internal/application/command"
	"github.com/HuntedCode/plat-pursuit/internal/application/query"
	"github.com/HuntedCode/plat-pursuit/internal/domain/badge"
	"github.com/HuntedCode/plat-pursuit/internal/domain/leaderboard"
	"github.com/HuntedCode/plat-pursuit/internal/domain/milestone"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/messaging"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/memory"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/postgres"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/redis"
	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/service"
	httpserver "github.com/HuntedCode/plat-pursuit/internal/interface/http"
	"github.com/HuntedCode/plat-pursuit/internal/interface/http/handlers"
	"github.com/HuntedCode/plat-pursuit/pkg/logger"
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
	// .env опционален: в контейнерах окружение приходит снаружи.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Plat Pursuit API",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
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
	// 5. ИНИЦИАЛИЗАЦИЯ КЕШЕЙ (Redis с фолбэком на in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache    *redis.Cache
		kvCache       shared.KeyValueCache
		snapshotStore leaderboard.SnapshotStore
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
		redisCache, err = redis.NewCache(redisConfigFrom(cfg))
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to in-process cache", "error", err)
			redisCache = nil
		}
	}

	if redisCache != nil {
		defer func() {
			log.Info("closing Redis connection...")
			_ = redisCache.Close()
		}()
		kvCache = redisCache
		snapshotStore = redis.NewSnapshotCache(redisCache)
		log.Info("Redis connection established")
	} else {
		// Без Redis снапшоты чужого процесса не видны: лидерборды
		// останутся пустыми, пока worker и API не разделят хранилище.
		kvCache = memory.NewCache()
		snapshotStore = memory.NewSnapshotStore()
		log.Warn("running with in-process cache, leaderboard snapshots from the worker are not visible")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	profileRepo := postgres.NewProfileRepository(dbConn)
	trophyRepo := postgres.NewTrophyRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	milestoneRepo := postgres.NewMilestoneRepository(dbConn)
	ratingRepo := postgres.NewRatingRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	// С Redis шина работает поверх Pub/Sub и видит события worker'а
	// (пересборки лидербордов); без него остаётся локальная доставка.
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log

	var eventBus shared.EventBus
	if redisCache != nil {
		redisBus, busErr := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewCacheRedisClient(redisCache),
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if busErr != nil {
			return fmt.Errorf("failed to initialize event bus: %w", busErr)
		}
		defer func() {
			log.Info("closing event bus...")
			_ = redisBus.Close()
		}()
		eventBus = redisBus
	} else {
		memBus := messaging.NewInMemoryEventBus(localBusConfig)
		defer func() {
			log.Info("closing event bus...")
			_ = memBus.Close()
		}()
		eventBus = memBus
	}

	// Награды выдаются синхронно в CheckAwards; подписчик только
	// логирует их, пока нет исходящих уведомлений.
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
	// 8. ДОМЕННЫЕ СЕРВИСЫ И КАЛЬКУЛЯТОРЫ
	// ─────────────────────────────────────────────────────────────────────────
	statsSource := service.NewProfileStatsSource(trophyRepo, profileRepo)
	registry := milestone.DefaultRegistry(statsSource)
	milestoneCalc := milestone.NewCalculator(milestoneRepo, registry)
	xpCalc := badge.NewCalculator(badgeRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION-ОБРАБОТЧИКИ (CQRS)
	// ─────────────────────────────────────────────────────────────────────────
	features := cfg.Features

	timelineCache := kvCache
	if !features.IsEnabled(config.FeatureTimelineServerCache, "") {
		timelineCache = nil
	}

	ratingWriteCache := kvCache
	if !features.IsEnabled(config.FeatureRatingsLiveRefresh, "") {
		ratingWriteCache = nil
	}

	getLeaderboard := query.NewGetLeaderboardHandler(snapshotStore)
	getProgress := query.NewGetProfileProgressHandler(milestoneCalc, milestoneRepo, badgeRepo, xpCalc)
	getTimeline := query.NewGetTimelineHandler(
		profileRepo, trophyRepo, milestoneRepo, badgeRepo,
		timelineCache, cfg.Cache.TimelineTTL, log,
	)
	getAverages := query.NewGetConceptAveragesHandler(ratingRepo, kvCache, cfg.Cache.ConceptAveragesTTL, log)
	submitRating := command.NewSubmitRatingHandler(ratingRepo, ratingWriteCache, cfg.Cache.ConceptAveragesTTL, eventBus, log)
	checkAwards := command.NewCheckAwardsHandler(milestoneRepo, registry, badgeRepo, eventBus, log)

	// Сведение региональных релизов к одному скоупу оценок; обе
	// стороны (чтение и запись) используют один и тот же grouper.
	if cfg.Ratings.ConceptAliasGroups != "" {
		grouper := service.NewConceptGrouperFromSpec(cfg.Ratings.ConceptAliasGroups)
		getAverages.SetConceptResolver(grouper.Canonical)
		submitRating.SetConceptResolver(grouper.Canonical)
		log.Info("concept alias groups loaded", "groups", grouper.GroupCount())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК HTTP-СЕРВЕРА
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpserver.Config{
		Host:                   cfg.HTTP.Host,
		Port:                   cfg.HTTP.Port,
		ReadTimeout:            cfg.HTTP.ReadTimeout,
		WriteTimeout:           cfg.HTTP.WriteTimeout,
		IdleTimeout:            cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:         1 << 20,
		EnableCORS:             cfg.HTTP.EnableCORS,
		AllowedOrigins:         cfg.HTTP.AllowedOrigins,
		EnableMetrics:          cfg.HTTP.EnableMetrics || features.IsEnabled(config.FeatureExperimentalMetrics, ""),
		RateLimitPerMinute:     cfg.HTTP.RateLimitPerMinute,
		LeaderboardCacheMaxAge: cfg.HTTP.LeaderboardCacheMaxAge,
	}

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		GetLeaderboardHandler:     getLeaderboard,
		GetProfileProgressHandler: getProgress,
		GetTimelineHandler:        getTimeline,
		GetConceptAveragesHandler: getAverages,
		SubmitRatingHandler:       submitRating,
		CheckAwardsHandler:        checkAwards,
		Logger:                    logger.New(logger.Options{Level: logger.ParseLevel(cfg.Observability.LogLevel)}),
		HealthChecker:             healthChecker,
	})

	errCh := server.StartAsync()
	log.Info("Plat Pursuit API is running", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
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
