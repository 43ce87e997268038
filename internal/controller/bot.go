package controller

import (
	"context"
	"strings"

	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/handlers"
	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	msgs            *messages.Catalog
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	cmdHandlers *handlers.Handlers,
	callbackHandler *callbacks.Handler,
	msgs *messages.Catalog,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		msgs:            msgs,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики обновлений
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Запросы на вступление в целевой чат
	c.bot.RegisterHandlerMatchFunc(isJoinRequest, c.handlers.HandleChatJoinRequest)

	// Команды
	c.bot.RegisterHandlerMatchFunc(isCommand("start"), c.handlers.HandleStart)
	c.bot.RegisterHandlerMatchFunc(isCommand("admin"), c.handlers.HandleAdmin)
	c.bot.RegisterHandlerMatchFunc(isCommand("pending"), c.handlers.HandlePending)
	c.bot.RegisterHandlerMatchFunc(isCommand("completed"), c.handlers.HandleCompleted)
	c.bot.RegisterHandlerMatchFunc(isCommand("cleanup"), c.handlers.HandleCleanup)

	// Причина и дополнения в личке
	c.bot.RegisterHandlerMatchFunc(isPrivateText, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.Route)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: c.msgs.Text(messages.CommandStart)},
		{Command: "admin", Description: c.msgs.Text(messages.CommandAdmin)},
		{Command: "pending", Description: c.msgs.Text(messages.CommandPending)},
		{Command: "completed", Description: c.msgs.Text(messages.CommandCompleted)},
		{Command: "cleanup", Description: c.msgs.Text(messages.CommandCleanup)},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot in polling mode...")
	c.bot.Start(ctx)
	return nil
}

// StartWebhook обрабатывает обновления, пришедшие через WebhookHandler
func (c *BotController) StartWebhook(ctx context.Context) error {
	c.logger.Info("Starting bot in webhook mode...")
	c.bot.StartWebhook(ctx)
	return nil
}

func isJoinRequest(update *models.Update) bool {
	return update.ChatJoinRequest != nil
}

func isCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && handlers.CommandName(update.Message.Text) == name
	}
}

// isPrivateText обычный текст в личке, не команда
func isPrivateText(update *models.Update) bool {
	msg := update.Message
	if msg == nil || msg.Chat.Type != models.ChatTypePrivate {
		return false
	}
	return msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
}
