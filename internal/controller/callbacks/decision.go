package callbacks

import (
	"context"
	"errors"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// handleDecision кнопки Approve/Decline на карточке
func (h *Handler) handleDecision(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	action, requestID, err := parseDecision(callback.Data)
	if err != nil {
		h.logger.Warn("Invalid decision callback", zap.String("data", callback.Data), zap.Error(err))
		if errors.Is(err, ErrInvalidRequestID) {
			h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(messages.InvalidRequestID, requestID))
			return
		}
		h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(errorKey(err)))
		return
	}

	result, err := h.decider.HandleAdminAction(ctx, requestID, callback.From.ID, adminName(callback.From), action)
	if err != nil {
		h.logger.Error("Failed to handle admin action",
			zap.String("request_id", requestID),
			zap.Int64("admin_id", callback.From.ID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(messages.CallbackError))
		return
	}

	if !result.OK {
		h.answerCallbackAlert(ctx, b, callback.ID, result.Message)
		return
	}
	h.answerCallback(ctx, b, callback.ID, result.Message)
}
