package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Authorizer проверяет права администратора в целевом чате и чате модерации
type Authorizer struct {
	authority    MembershipAuthority
	targetChatID int64
	reviewChatID int64
	logger       *zap.Logger
}

func NewAuthorizer(authority MembershipAuthority, targetChatID, reviewChatID int64, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		authority:    authority,
		targetChatID: targetChatID,
		reviewChatID: reviewChatID,
		logger:       logger,
	}
}

// IsAdminInChat проверяет, что пользователь владелец или администратор чата
func (a *Authorizer) IsAdminInChat(ctx context.Context, chatID, userID int64) (bool, error) {
	role, err := a.authority.GetMemberRole(ctx, chatID, userID)
	if err != nil {
		return false, fmt.Errorf("get role in chat %d: %w", chatID, err)
	}
	return role.IsElevated(), nil
}

// IsAdminInBothChats запрашивает оба чата параллельно.
// Любая ошибка API означает отказ: ошибка логируется, но не возвращается.
func (a *Authorizer) IsAdminInBothChats(ctx context.Context, userID int64) bool {
	var inTarget, inReview bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := a.IsAdminInChat(gctx, a.targetChatID, userID)
		inTarget = ok
		return err
	})
	g.Go(func() error {
		ok, err := a.IsAdminInChat(gctx, a.reviewChatID, userID)
		inReview = ok
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Error checking admin status",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}

	return inTarget && inReview
}

// CanUseAdminCommands: в чате модерации можно всем, в личке только его администраторам
func (a *Authorizer) CanUseAdminCommands(ctx context.Context, chatID int64, private bool, userID int64) bool {
	if chatID == a.reviewChatID {
		return true
	}
	if !private {
		return false
	}

	ok, err := a.IsAdminInChat(ctx, a.reviewChatID, userID)
	if err != nil {
		a.logger.Error("Failed to verify admin status",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return ok
}
