package callbacks

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// answerCallback отвечает на callback query (без alert)
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	h.answer(ctx, b, callbackID, text, false)
}

// answerCallbackAlert отвечает всплывающим окном
func (h *Handler) answerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID, text string) {
	h.answer(ctx, b, callbackID, text, true)
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.String("callback_id", callbackID), zap.Error(err))
	}
}

// messageFromCallback сообщение, к которому привязана кнопка
func messageFromCallback(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}

// adminName имя для подписи решения: @username или имя
func adminName(u models.User) string {
	if u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// parseDecision разбирает "approve:<id>" / "decline:<id>"
func parseDecision(data string) (service.AdminAction, string, error) {
	action, id, ok := strings.Cut(data, ":")
	if !ok || id == "" {
		return "", "", ErrInvalidFormat
	}

	switch service.AdminAction(action) {
	case service.ActionApprove, service.ActionDecline:
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", id, fmt.Errorf("%w: %s", ErrInvalidRequestID, id)
	}
	return service.AdminAction(action), id, nil
}
