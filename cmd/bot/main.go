package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/gatekeeper_bot/internal/app"
	"github.com/Freeeeeet/gatekeeper_bot/internal/config"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/handlers"
	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting gatekeeper bot",
		zap.String("environment", cfg.Environment),
		zap.String("mode", string(cfg.Mode)),
		zap.String("storage", string(cfg.StorageType)),
		zap.Int64("target_chat_id", cfg.TargetChatID),
		zap.Int64("review_chat_id", cfg.AdminReviewChatID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("✅ Bot stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	msgs, err := messages.Load(cfg.Language)
	if err != nil {
		return err
	}

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("Failed to close storage", zap.Error(err))
		}
	}()

	opts := []bot.Option{
		bot.WithDefaultHandler(func(context.Context, *bot.Bot, *models.Update) {}),
		bot.WithErrorsHandler(func(err error) {
			logger.Error("Telegram API error", zap.Error(err))
		}),
	}
	if cfg.WebhookSecretToken != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecretToken))
	}

	b, err := bot.New(cfg.TelegramToken, opts...)
	if err != nil {
		return err
	}

	gateway := controller.NewGateway(b, logger)
	rules := cfg.ValidationRules()

	repo := repository.NewJoinRequestRepository(storage.Store, rules, logger)
	authz := service.NewAuthorizer(gateway, cfg.TargetChatID, cfg.AdminReviewChatID, logger)
	cards := service.NewReviewCards(gateway, cfg.AdminReviewChatID, msgs, cfg.Location, logger)
	requests := service.NewJoinRequestService(repo, authz, cards, gateway, gateway, msgs, rules, cfg.TargetChatID, logger)
	admin := service.NewAdminService(repo, logger)

	cmdHandlers := handlers.NewHandlers(requests, admin, authz, cards, msgs, cfg.Location, logger)
	callbackHandler := callbacks.NewHandler(requests, authz, cmdHandlers, msgs, logger)
	ctrl := controller.NewBotController(b, cmdHandlers, callbackHandler, msgs, logger)

	if err := ctrl.RegisterHandlers(ctx); err != nil {
		// меню команд не критично для работы
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	scheduler := app.NewScheduler(admin, cfg.CleanupSchedule, cfg.Location, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if cfg.Mode == config.ModePolling {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			logger.Warn("Failed to delete webhook before polling", zap.Error(err))
		}
		return ctrl.Start(ctx)
	}

	router := app.NewRouter(cfg.WebhookPath, b.WebhookHandler(), logger)
	server := app.NewHTTPServer(cfg.HTTPAddr, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.StartWebhook(gctx) })
	g.Go(func() error { return server.Run(gctx) })
	return g.Wait()
}
