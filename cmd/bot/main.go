package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/app"
	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/config"
	"github.com/Freeeeeet/groupmate_bot/internal/controller"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/dispatcher"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/handlers"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/sender"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/repository"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/Freeeeeet/groupmate_bot/internal/workerpool"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogDir)
	defer logger.Sync()

	logger.Info("Starting groupmate bot",
		zap.String("environment", cfg.Environment),
		zap.String("run_mode", cfg.Telegram.RunMode),
		zap.String("timezone", cfg.Timezone))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	now := func() time.Time { return time.Now().In(cfg.Location) }

	// База: справочник чатов для уведомлений
	pool, err := connectDatabase(ctx, cfg.GetDBDSN(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	migrator, err := app.NewMigrator(sqlDB, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		return err
	}
	chatRepo := repository.NewChatRepository(sqlx.NewDb(sqlDB, "pgx"))

	backendClient, err := backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.Timeout, logger)
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	// Календарь строится один раз, дальше клавиатуры берутся из кэша
	window, err := calendar.NewWindow(cfg.Calendar.Min, cfg.Calendar.Max)
	if err != nil {
		return fmt.Errorf("calendar window: %w", err)
	}
	calendarCache := calendar.NewCache(calendar.NewGenerator(window), now, logger)
	if err := calendarCache.Precompute(ctx); err != nil {
		return fmt.Errorf("precompute calendar: %w", err)
	}

	b, err := bot.New(cfg.Telegram.Token, bot.WithNotAsyncHandlers())
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	messenger := sender.New(b, sender.Options{
		Workers:      cfg.Sender.Workers,
		QueueSize:    cfg.Sender.QueueSize,
		MaxRetries:   *cfg.Sender.MaxRetries,
		RetryBackoff: cfg.Sender.RetryBackoff,
	}, logger)
	defer messenger.Close()

	notifier := service.NewNotifierService(backendClient, chatRepo, messenger, logger)
	reminders := service.NewReminderService(backendClient, chatRepo, messenger, now, logger)

	stores := state.NewStores()
	deps := &callbacktypes.Deps{
		Backend:   backendClient,
		Messenger: messenger,
		Notifier:  notifier,
		Stores:    stores,
		Calendar:  calendarCache,
		Logger:    logger,
		Now:       now,
	}

	workers := workerpool.New(workerpool.Options{
		Name:      "dispatcher",
		Workers:   cfg.Dispatcher.Workers,
		QueueSize: cfg.Dispatcher.QueueSize,
	}, logger)
	eventDispatcher := dispatcher.New(
		handlers.NewHandlers(deps),
		callbacks.NewRouter(deps),
		stores,
		chatRepo,
		workers,
		logger,
	)
	defer eventDispatcher.Close()

	botController := controller.NewBotController(b, eventDispatcher, cfg.Dispatcher.MaxBatch, cfg.Dispatcher.QueueSize, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Continuing without commands menu", zap.Error(err))
	}

	scheduler, err := app.NewScheduler(reminders, cfg.ReminderCron, cfg.Location, logger)
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return runWebhook(ctx, cfg, b, botController, logger)
	}

	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		logger.Warn("Failed to delete webhook", zap.Error(err))
	}
	return botController.Start(ctx)
}

func runWebhook(ctx context.Context, cfg *config.Config, b *bot.Bot, c *controller.BotController, logger *zap.Logger) error {
	hookURL, err := url.Parse(cfg.Webhook.URL)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}

	if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{URL: cfg.Webhook.URL}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	server := app.NewServer(cfg.Webhook.Listen, hookURL.Path, b.WebhookHandler(), logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Webhook server failed", zap.Error(err))
		}
	}()

	err = c.StartWebhook(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("Webhook server shutdown failed", zap.Error(shutdownErr))
	}
	return err
}

// connectDatabase подключается к PostgreSQL с повторами, пока база поднимается
func connectDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	const (
		maxRetries = 30
		retryDelay = 2 * time.Second
	)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logger.Info("Database connection established")
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		logger.Warn("Failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", maxRetries, lastErr)
}
