package callbacks

import (
	"context"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Decider применяет решение администратора по заявке
type Decider interface {
	HandleAdminAction(ctx context.Context, requestID string, adminID int64, adminName string, action service.AdminAction) (service.AdminActionResult, error)
}

// AdminGuard проверка доступа к админ-панели
type AdminGuard interface {
	CanUseAdminCommands(ctx context.Context, chatID int64, private bool, userID int64) bool
}

// AdminLists отправка списков заявок в чат
type AdminLists interface {
	SendPending(ctx context.Context, b *bot.Bot, chatID int64, limit int)
	SendCompleted(ctx context.Context, b *bot.Bot, chatID int64, limit int)
}

// Handler обработчик нажатий inline-кнопок
type Handler struct {
	decider Decider
	guard   AdminGuard
	lists   AdminLists
	msgs    *messages.Catalog
	logger  *zap.Logger
}

func NewHandler(decider Decider, guard AdminGuard, lists AdminLists, msgs *messages.Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		decider: decider,
		guard:   guard,
		lists:   lists,
		msgs:    msgs,
		logger:  logger,
	}
}
