package callbacks

import (
	"context"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// handleAdminPanel кнопки панели /admin
func (h *Handler) handleAdminPanel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := messageFromCallback(callback)
	if msg == nil {
		h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(errorKey(ErrNoMessage)))
		return
	}

	private := msg.Chat.Type == models.ChatTypePrivate
	if !h.guard.CanUseAdminCommands(ctx, msg.Chat.ID, private, callback.From.ID) {
		h.logger.Info("Admin panel rejected",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("user_id", callback.From.ID),
		)
		h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(messages.NotAuthorized))
		return
	}

	switch callback.Data {
	case AdminPending:
		h.answerCallback(ctx, b, callback.ID, "")
		h.lists.SendPending(ctx, b, msg.Chat.ID, service.DefaultListLimit)
	case AdminCompleted:
		h.answerCallback(ctx, b, callback.ID, "")
		h.lists.SendCompleted(ctx, b, msg.Chat.ID, service.DefaultListLimit)
	default:
		h.answerCallbackAlert(ctx, b, callback.ID, h.msgs.Text(errorKey(ErrUnknownAction)))
	}
}
