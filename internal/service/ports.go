package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
)

// MemberRole статус пользователя в чате
type MemberRole string

const (
	RoleOwner         MemberRole = "owner"
	RoleAdministrator MemberRole = "administrator"
	RoleMember        MemberRole = "member"
	RoleRestricted    MemberRole = "restricted"
	RoleLeft          MemberRole = "left"
	RoleBanned        MemberRole = "banned"
)

// IsElevated владелец или администратор
func (r MemberRole) IsElevated() bool {
	return r == RoleOwner || r == RoleAdministrator
}

// CardAction кнопка под карточкой
type CardAction struct {
	Label string
	Data  string
}

// ReviewCard текст карточки модерации и её кнопки
type ReviewCard struct {
	Text    string
	Actions []CardAction
}

// Messenger исходящие сообщения
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	PostCard(ctx context.Context, chatID int64, card ReviewCard) (int, error)
	EditCard(ctx context.Context, chatID int64, messageID int, card ReviewCard) error
}

// MembershipAuthority внешний источник истины о членстве в чатах
type MembershipAuthority interface {
	GetMemberRole(ctx context.Context, chatID, userID int64) (MemberRole, error)
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error
	DeclineJoinRequest(ctx context.Context, chatID, userID int64) error
}

// ChatMigratedError группа была преобразована в супергруппу с новым ID
type ChatMigratedError struct {
	OldChatID int64
	NewChatID int64
}

func (e *ChatMigratedError) Error() string {
	return fmt.Sprintf("chat %d migrated to %d", e.OldChatID, e.NewChatID)
}

// JoinRequestRepository хранилище заявок, которым пользуются сервисы
type JoinRequestRepository interface {
	Create(ctx context.Context, input model.JoinRequestInput) (*model.JoinRequest, error)
	FindByID(ctx context.Context, requestID string) (*model.JoinRequest, error)
	FindByUserID(ctx context.Context, userID int64) (*model.JoinRequest, error)
	FindRecentByStatus(ctx context.Context, filter store.StatusFilter, limit int) ([]*model.JoinRequest, error)
	Save(ctx context.Context, jr *model.JoinRequest) error
	MarkPendingAsStaleResolved(ctx context.Context, requestIDs []string, resolvedBy string) (int, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
