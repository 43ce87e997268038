package handlers

import (
	"context"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart /start в личке: напоминает, что нужна причина
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	text, err := h.flow.Instructions(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("Failed to load instructions", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.ErrorGeneric))
		return
	}
	if text != "" {
		h.sendMessage(ctx, b, msg.Chat.ID, text)
	}
}

// HandleTextMessage текст пользователя в личке: причина или дополнение
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	reply, err := h.flow.HandleUserMessage(ctx, msg.From.ID, msg.Text)
	if err != nil {
		h.logger.Error("Failed to handle user message", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.ErrorGeneric))
		return
	}
	if reply != "" {
		h.sendMessage(ctx, b, msg.Chat.ID, reply)
	}
}
