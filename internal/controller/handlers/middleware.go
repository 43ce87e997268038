package handlers

import (
	"context"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireAdmin пропускает админ-команду только из чата модерации
// или из лички администратора этого чата
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*models.Message, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil, false
	}

	private := msg.Chat.Type == models.ChatTypePrivate
	if h.guard.CanUseAdminCommands(ctx, msg.Chat.ID, private, msg.From.ID) {
		return msg, true
	}

	h.logger.Info("Admin command rejected",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int64("user_id", msg.From.ID),
		zap.String("text", msg.Text),
	)

	if private {
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.NotAuthorized))
	} else {
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.PrivateOnlyHint))
	}
	return nil, false
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendHTML то же, но с HTML-разметкой и необязательной клавиатурой
func (h *Handlers) sendHTML(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
