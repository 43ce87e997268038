package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// TelegramAPI методы Bot API, которыми пользуется шлюз
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	ApproveChatJoinRequest(ctx context.Context, params *bot.ApproveChatJoinRequestParams) (bool, error)
	DeclineChatJoinRequest(ctx context.Context, params *bot.DeclineChatJoinRequestParams) (bool, error)
}

// Gateway исходящие вызовы Telegram для сервисного слоя
type Gateway struct {
	api    TelegramAPI
	logger *zap.Logger
}

func NewGateway(api TelegramAPI, logger *zap.Logger) *Gateway {
	return &Gateway{api: api, logger: logger}
}

func (g *Gateway) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := g.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, migrated(chatID, err))
	}
	return nil
}

func (g *Gateway) PostCard(ctx context.Context, chatID int64, card service.ReviewCard) (int, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   card.Text,
	}
	if markup := keyboard.FromActions(card.Actions); markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := g.api.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("post card to %d: %w", chatID, migrated(chatID, err))
	}
	return msg.ID, nil
}

func (g *Gateway) EditCard(ctx context.Context, chatID int64, messageID int, card service.ReviewCard) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      card.Text,
	}
	if markup := keyboard.FromActions(card.Actions); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := g.api.EditMessageText(ctx, params); err != nil {
		if IsNotModified(err) {
			g.logger.Debug("Card unchanged", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID))
			return nil
		}
		return fmt.Errorf("edit card %d in %d: %w", messageID, chatID, migrated(chatID, err))
	}
	return nil
}

func (g *Gateway) GetMemberRole(ctx context.Context, chatID, userID int64) (service.MemberRole, error) {
	member, err := g.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("get chat member %d in %d: %w", userID, chatID, err)
	}
	return memberRole(member.Type), nil
}

func (g *Gateway) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	_, err := g.api.ApproveChatJoinRequest(ctx, &bot.ApproveChatJoinRequestParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("approve join request of %d: %w", userID, err)
	}
	return nil
}

func (g *Gateway) DeclineJoinRequest(ctx context.Context, chatID, userID int64) error {
	_, err := g.api.DeclineChatJoinRequest(ctx, &bot.DeclineChatJoinRequestParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("decline join request of %d: %w", userID, err)
	}
	return nil
}

func memberRole(t models.ChatMemberType) service.MemberRole {
	switch t {
	case models.ChatMemberTypeOwner:
		return service.RoleOwner
	case models.ChatMemberTypeAdministrator:
		return service.RoleAdministrator
	case models.ChatMemberTypeMember:
		return service.RoleMember
	case models.ChatMemberTypeRestricted:
		return service.RoleRestricted
	case models.ChatMemberTypeBanned:
		return service.RoleBanned
	default:
		return service.RoleLeft
	}
}

// migrated заменяет ошибку миграции группы на ChatMigratedError
func migrated(chatID int64, err error) error {
	var migrateErr *bot.MigrateError
	if errors.As(err, &migrateErr) {
		return &service.ChatMigratedError{
			OldChatID: chatID,
			NewChatID: int64(migrateErr.MigrateToChatID),
		}
	}
	return err
}

// IsNotModified Telegram отказал в правке, потому что текст не изменился
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
