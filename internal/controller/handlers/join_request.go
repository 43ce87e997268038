package handlers

import (
	"context"

	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleChatJoinRequest запрос на вступление в целевой чат
func (h *Handlers) HandleChatJoinRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	req := update.ChatJoinRequest
	if req == nil {
		return
	}

	user := service.Requester{
		ID:        req.From.ID,
		FirstName: req.From.FirstName,
		LastName:  req.From.LastName,
		Username:  req.From.Username,
		ChatID:    req.UserChatID,
	}

	h.logger.Info("Join request received",
		zap.Int64("user_id", user.ID),
		zap.Int64("target_chat_id", req.Chat.ID),
	)

	if err := h.flow.InitializeRequest(ctx, user, req.Chat.ID); err != nil {
		h.logger.Error("Failed to initialize join request",
			zap.Int64("user_id", user.ID),
			zap.Int64("target_chat_id", req.Chat.ID),
			zap.Error(err),
		)
		h.reporter.Alert(ctx, "join request", err)
	}
}
