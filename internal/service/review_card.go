package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"go.uber.org/zap"
)

// AdminAction решение администратора по карточке
type AdminAction string

const (
	ActionApprove AdminAction = "approve"
	ActionDecline AdminAction = "decline"
)

// CallbackData данные кнопки карточки: approve:<id> / decline:<id>
func CallbackData(action AdminAction, requestID string) string {
	return string(action) + ":" + requestID
}

const cardTimeLayout = "02.01.2006 15:04"

// RenderReviewCard строит карточку по текущему состоянию заявки.
// Пока решения нет, у карточки есть кнопки; итоговая карточка без кнопок.
func RenderReviewCard(c model.JoinRequestContext, msgs *messages.Catalog, loc *time.Location) ReviewCard {
	userLine := fmt.Sprintf("%s: %s", msgs.Text(messages.CardUser), c.DisplayName)
	if c.Username != "" {
		userLine += " (@" + c.Username + ")"
	}
	idLine := fmt.Sprintf("%s: %d", msgs.Text(messages.CardID), c.UserID)

	if d := c.Decision; d != nil {
		header, footer := "✅ ", msgs.Text(messages.CardApproved)
		if d.Status == model.DecisionDeclined {
			header, footer = "❌ ", msgs.Text(messages.CardDeclined)
		}
		adminName := d.AdminName
		if adminName == "" {
			adminName = msgs.Text(messages.UnknownAdmin)
		}

		lines := []string{
			header + footer,
			"",
			userLine,
			idLine,
			"",
			msgs.Text(messages.CardReason) + ":",
			c.Reason,
			"",
			"---",
			msgs.Text(messages.CardDecidedBy, footer, adminName),
		}
		return ReviewCard{Text: strings.Join(lines, "\n")}
	}

	var b strings.Builder
	b.WriteString(msgs.Text(messages.CardTitle))
	b.WriteString("\n\n")
	b.WriteString(userLine + "\n")
	b.WriteString(idLine + "\n")
	fmt.Fprintf(&b, "%s: %s\n\n", msgs.Text(messages.CardTime), c.Timestamp.In(loc).Format(cardTimeLayout))
	b.WriteString(msgs.Text(messages.CardReason) + ":\n")
	b.WriteString(c.Reason)
	if len(c.AdditionalMessages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(c.AdditionalMessages, "\n\n"))
	}

	return ReviewCard{
		Text: b.String(),
		Actions: []CardAction{
			{Label: msgs.Text(messages.ButtonApprove), Data: CallbackData(ActionApprove, c.RequestID)},
			{Label: msgs.Text(messages.ButtonDecline), Data: CallbackData(ActionDecline, c.RequestID)},
		},
	}
}

// ReviewCards публикует и обновляет карточки в чате модерации
type ReviewCards struct {
	messenger    Messenger
	reviewChatID int64
	msgs         *messages.Catalog
	loc          *time.Location
	logger       *zap.Logger
}

func NewReviewCards(messenger Messenger, reviewChatID int64, msgs *messages.Catalog, loc *time.Location, logger *zap.Logger) *ReviewCards {
	return &ReviewCards{
		messenger:    messenger,
		reviewChatID: reviewChatID,
		msgs:         msgs,
		loc:          loc,
		logger:       logger,
	}
}

// Post публикует карточку и возвращает ID сообщения
func (rc *ReviewCards) Post(ctx context.Context, jr *model.JoinRequest) (int, error) {
	card := RenderReviewCard(jr.Context(), rc.msgs, rc.loc)

	var messageID int
	err := rc.withReviewChat(func(chatID int64) error {
		id, err := rc.messenger.PostCard(ctx, chatID, card)
		if err != nil {
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("post review card: %w", err)
	}

	return messageID, nil
}

// Update перерисовывает существующую карточку по текущему состоянию заявки
func (rc *ReviewCards) Update(ctx context.Context, jr *model.JoinRequest) error {
	c := jr.Context()
	if c.AdminMsgID == nil {
		rc.logger.Warn("Review card was never posted, skipping update",
			zap.String("request_id", c.RequestID),
			zap.Int64("user_id", c.UserID),
			zap.String("state", string(jr.State())),
		)
		return nil
	}

	card := RenderReviewCard(c, rc.msgs, rc.loc)
	err := rc.withReviewChat(func(chatID int64) error {
		return rc.messenger.EditCard(ctx, chatID, *c.AdminMsgID, card)
	})
	if err != nil {
		return fmt.Errorf("update review card: %w", err)
	}

	return nil
}

// Alert пересылает ошибку в чат модерации; сбой отправки только логируется
func (rc *ReviewCards) Alert(ctx context.Context, where string, cause error) {
	text := rc.msgs.Text(messages.ErrorAlert, where, cause.Error())

	err := rc.withReviewChat(func(chatID int64) error {
		return rc.messenger.SendText(ctx, chatID, text)
	})
	if err != nil {
		rc.logger.Error("Failed to send error to admin group",
			zap.String("context", where),
			zap.Error(err),
		)
	}
}

// withReviewChat повторяет вызов один раз с новым ID, если чат модерации мигрировал
func (rc *ReviewCards) withReviewChat(fn func(chatID int64) error) error {
	err := fn(rc.reviewChatID)

	var migrated *ChatMigratedError
	if !errors.As(err, &migrated) {
		return err
	}

	rc.logger.Warn("Chat was upgraded to supergroup, update ADMIN_REVIEW_CHAT_ID",
		zap.Int64("old_chat_id", rc.reviewChatID),
		zap.Int64("new_chat_id", migrated.NewChatID),
	)

	if err := fn(migrated.NewChatID); err != nil {
		return fmt.Errorf("after chat migration: %w", err)
	}
	return nil
}
