package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"go.uber.org/zap"
)

// RequestFlow сценарий заявки со стороны пользователя
type RequestFlow interface {
	InitializeRequest(ctx context.Context, user service.Requester, targetChatID int64) error
	HandleUserMessage(ctx context.Context, userID int64, text string) (string, error)
	Instructions(ctx context.Context, userID int64) (string, error)
}

// AdminOps выборки и очистка для админ-команд
type AdminOps interface {
	Pending(ctx context.Context, limit int) ([]*model.JoinRequest, error)
	Completed(ctx context.Context, limit int) ([]*model.JoinRequest, error)
	StalePending(ctx context.Context) ([]*model.JoinRequest, error)
	ResolveStale(ctx context.Context) (int, error)
}

// AdminGuard решает, можно ли пользователю админ-команды в этом чате
type AdminGuard interface {
	CanUseAdminCommands(ctx context.Context, chatID int64, private bool, userID int64) bool
}

// ErrorReporter дублирует сбои в чат модерации
type ErrorReporter interface {
	Alert(ctx context.Context, where string, cause error)
}

// Handlers обработчики входящих сообщений и команд
type Handlers struct {
	flow     RequestFlow
	admin    AdminOps
	guard    AdminGuard
	reporter ErrorReporter
	msgs     *messages.Catalog
	loc      *time.Location
	logger   *zap.Logger
}

func NewHandlers(
	flow RequestFlow,
	admin AdminOps,
	guard AdminGuard,
	reporter ErrorReporter,
	msgs *messages.Catalog,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		flow:     flow,
		admin:    admin,
		guard:    guard,
		reporter: reporter,
		msgs:     msgs,
		loc:      loc,
		logger:   logger,
	}
}
