package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleAdmin /admin: панель с выбором списка
func (h *Handlers) HandleAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button(h.msgs.Text(messages.ButtonPending), callbacks.AdminPending)).
		Row(keyboard.Button(h.msgs.Text(messages.ButtonCompleted), callbacks.AdminCompleted)).
		Build()

	h.sendHTML(ctx, b, msg.Chat.ID, h.msgs.Text(messages.AdminDashboard), kb)
}

// HandlePending /pending [n]
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	h.SendPending(ctx, b, msg.Chat.ID, listLimit(msg.Text))
}

// HandleCompleted /completed [n]
func (h *Handlers) HandleCompleted(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	h.SendCompleted(ctx, b, msg.Chat.ID, listLimit(msg.Text))
}

// HandleCleanup /cleanup показывает зависшие заявки, /cleanup confirm закрывает их
func (h *Handlers) HandleCleanup(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	_, args := parseCommand(msg.Text)
	if len(args) > 0 && strings.EqualFold(args[0], "confirm") {
		marked, err := h.admin.ResolveStale(ctx)
		if err != nil {
			h.logger.Error("Cleanup failed", zap.Error(err))
			h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.ErrorGeneric))
			return
		}
		if marked == 0 {
			h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.CleanupNothing))
			return
		}
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.CleanupMarked, marked))
		return
	}

	items, err := h.admin.StalePending(ctx)
	if err != nil {
		h.logger.Error("Failed to list stale requests", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.ErrorGeneric))
		return
	}
	if len(items) == 0 {
		h.sendMessage(ctx, b, msg.Chat.ID, h.msgs.Text(messages.CleanupEmpty))
		return
	}

	text := FormatRequestList(h.msgs.Text(messages.CleanupTitle), items, "", h.msgs, h.loc, time.Now()) +
		"\n" + h.msgs.Text(messages.CleanupPrompt, len(items))
	h.sendHTML(ctx, b, msg.Chat.ID, text, nil)
}

// SendPending отправляет список открытых заявок
func (h *Handlers) SendPending(ctx context.Context, b *bot.Bot, chatID int64, limit int) {
	limit = service.ClampListLimit(limit)
	h.sendMessage(ctx, b, chatID, h.msgs.Text(messages.FetchingPending, limit))

	items, err := h.admin.Pending(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list pending requests", zap.Error(err))
		h.sendMessage(ctx, b, chatID, h.msgs.Text(messages.ErrorGeneric))
		return
	}

	h.sendHTML(ctx, b, chatID,
		FormatRequestList(h.msgs.Text(messages.PendingTitle), items, h.msgs.Text(messages.NoRequests), h.msgs, h.loc, time.Now()),
		nil)
}

// SendCompleted отправляет список рассмотренных заявок
func (h *Handlers) SendCompleted(ctx context.Context, b *bot.Bot, chatID int64, limit int) {
	limit = service.ClampListLimit(limit)
	h.sendMessage(ctx, b, chatID, h.msgs.Text(messages.FetchingCompleted, limit))

	items, err := h.admin.Completed(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list completed requests", zap.Error(err))
		h.sendMessage(ctx, b, chatID, h.msgs.Text(messages.ErrorGeneric))
		return
	}

	h.sendHTML(ctx, b, chatID,
		FormatRequestList(h.msgs.Text(messages.CompletedTitle), items, h.msgs.Text(messages.NoRequests), h.msgs, h.loc, time.Now()),
		nil)
}

// listLimit аргумент n из "/pending n"; 0 если не задан
func listLimit(text string) int {
	_, args := parseCommand(text)
	if len(args) == 0 {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0
	}
	return n
}
