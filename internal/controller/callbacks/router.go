package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Префиксы callback data
const (
	ApprovePrefix = "approve:" // approve:<request_id>
	DeclinePrefix = "decline:" // decline:<request_id>
	AdminPrefix   = "admin:"   // admin:pending | admin:completed
)

const (
	AdminPending   = AdminPrefix + "pending"
	AdminCompleted = AdminPrefix + "completed"
)

// Route направляет callback к обработчику по префиксу данных
func (h *Handler) Route(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	h.logger.Debug("Callback received",
		zap.Int64("user_id", callback.From.ID),
		zap.String("data", callback.Data),
	)

	switch {
	case strings.HasPrefix(callback.Data, ApprovePrefix), strings.HasPrefix(callback.Data, DeclinePrefix):
		h.handleDecision(ctx, b, callback)
	case strings.HasPrefix(callback.Data, AdminPrefix):
		h.handleAdminPanel(ctx, b, callback)
	default:
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		h.answerCallback(ctx, b, callback.ID, h.msgs.Text(messages.UnknownAction))
	}
}
