package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/app"
	"github.com/lucagreco-dev/prenota_bot/internal/calendar"
	"github.com/lucagreco-dev/prenota_bot/internal/config"
	"github.com/lucagreco-dev/prenota_bot/internal/controller"
	"github.com/lucagreco-dev/prenota_bot/internal/engine"
	"github.com/lucagreco-dev/prenota_bot/internal/profile"
	"github.com/lucagreco-dev/prenota_bot/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting prenota bot",
		zap.String("environment", cfg.Environment),
		zap.String("default_business_id", cfg.DefaultBusinessID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pool Postgres
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// Migrazioni
	migrator, err := app.NewMigrator(pool, "migrations")
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Redis per la cache dei profili
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, profile cache degraded", zap.Error(err))
	}

	// Google Calendar con retry sugli errori transienti
	googleClient := calendar.NewGoogleClient(calendar.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
	}, logger)
	calendarService := calendar.WithRetry(googleClient, logger)

	// Store e motore di scheduling
	appointmentRepo := repository.NewAppointmentRepository(pool)
	profileStore := profile.NewCachedStore(
		profile.NewPostgresStore(pool),
		redisClient,
		profile.DefaultCacheTTL,
		logger,
	)

	lifecycle := engine.NewLifecycleManager(appointmentRepo, calendarService, logger)
	schedulingEngine := engine.New(profileStore, lifecycle, logger)

	// Task in background: pulizia degli appuntamenti mai confermati
	scheduler := app.NewScheduler(appointmentRepo, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Bot Telegram
	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		botInstance,
		schedulingEngine,
		profileStore,
		cfg.DefaultBusinessID,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
