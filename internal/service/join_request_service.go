package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"go.uber.org/zap"
)

// Подстроки ошибок API, означающие что нужное состояние уже достигнуто
var (
	approveNoopMarkers = []string{"USER_ALREADY_PARTICIPANT", "HIDE_REQUESTER_MISSING"}
	declineNoopMarkers = []string{"USER_NOT_PARTICIPANT", "user not found", "HIDE_REQUESTER_MISSING"}
)

// Requester пользователь, подавший заявку
type Requester struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	// ChatID личный чат для ответа, если Telegram его передал
	ChatID int64
}

// DisplayName имя для карточки; пустое, если имени нет
func (r Requester) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// AdminActionResult итог нажатия кнопки администратором
type AdminActionResult struct {
	OK             bool
	Message        string
	AlreadyHandled bool
}

// JoinRequestService ведёт заявку от запроса на вступление до решения
type JoinRequestService struct {
	repo         JoinRequestRepository
	authz        *Authorizer
	cards        *ReviewCards
	messenger    Messenger
	authority    MembershipAuthority
	msgs         *messages.Catalog
	rules        model.ValidationRules
	targetChatID int64
	logger       *zap.Logger
}

func NewJoinRequestService(
	repo JoinRequestRepository,
	authz *Authorizer,
	cards *ReviewCards,
	messenger Messenger,
	authority MembershipAuthority,
	msgs *messages.Catalog,
	rules model.ValidationRules,
	targetChatID int64,
	logger *zap.Logger,
) *JoinRequestService {
	return &JoinRequestService{
		repo:         repo,
		authz:        authz,
		cards:        cards,
		messenger:    messenger,
		authority:    authority,
		msgs:         msgs,
		rules:        rules,
		targetChatID: targetChatID,
		logger:       logger,
	}
}

// InitializeRequest создаёт заявку и просит пользователя указать причину.
// Если написать пользователю не удалось, причина заполняется за него и карточка публикуется сразу.
func (s *JoinRequestService) InitializeRequest(ctx context.Context, user Requester, targetChatID int64) error {
	if targetChatID != s.targetChatID {
		s.logger.Warn("Join request for unmanaged chat ignored",
			zap.Int64("user_id", user.ID),
			zap.Int64("target_chat_id", targetChatID),
		)
		return nil
	}

	displayName := user.DisplayName()
	if displayName == "" {
		displayName = s.msgs.Text(messages.DefaultDisplay)
	}

	jr, err := s.repo.Create(ctx, model.JoinRequestInput{
		UserID:       user.ID,
		TargetChatID: targetChatID,
		DisplayName:  displayName,
		Username:     user.Username,
	})
	if err != nil {
		return err
	}

	if err := jr.StartCollection(); err != nil {
		return fmt.Errorf("start collection: %w", err)
	}
	if err := s.repo.Save(ctx, jr); err != nil {
		return err
	}

	recipient := user.ChatID
	if recipient == 0 {
		recipient = user.ID
	}

	dmErr := s.messenger.SendText(ctx, recipient, s.msgs.Text(messages.Welcome, s.rules.MinReasonWords))
	if dmErr == nil {
		return nil
	}

	s.logger.Error("Failed to send DM to user",
		zap.String("request_id", jr.ID()),
		zap.Int64("user_id", user.ID),
		zap.Error(dmErr),
	)

	if err := jr.SubmitReasonOnBehalf(s.msgs.Text(messages.DMFailed)); err != nil {
		return fmt.Errorf("submit fallback reason: %w", err)
	}
	if err := s.repo.Save(ctx, jr); err != nil {
		return err
	}

	s.publishCard(ctx, jr)
	return nil
}

// HandleUserMessage обрабатывает текст пользователя в личном чате.
// Без открытой заявки отвечает, что изменить уже ничего нельзя. Пустой ответ означает, что отвечать не нужно.
func (s *JoinRequestService) HandleUserMessage(ctx context.Context, userID int64, text string) (string, error) {
	jr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if jr == nil {
		return s.msgs.Text(messages.NoOpenRequest), nil
	}

	c := jr.Context()
	if c.UserID != userID || c.TargetChatID != s.targetChatID {
		s.logger.Warn("Request mismatch",
			zap.Int64("user_id", userID),
			zap.Int64("request_user_id", c.UserID),
			zap.Int64("request_target_chat_id", c.TargetChatID),
		)
		return "", nil
	}

	switch jr.State() {
	case model.StateCollectingReason:
		return s.submitReason(ctx, jr, text)
	case model.StateAwaitingReview:
		return s.addMessage(ctx, jr, text)
	default:
		return "", nil
	}
}

// Instructions повторяет приглашение указать причину, если заявка ждёт её
func (s *JoinRequestService) Instructions(ctx context.Context, userID int64) (string, error) {
	jr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if jr == nil || jr.State() != model.StateCollectingReason {
		return "", nil
	}
	return s.msgs.Text(messages.Welcome, s.rules.MinReasonWords), nil
}

func (s *JoinRequestService) submitReason(ctx context.Context, jr *model.JoinRequest, text string) (string, error) {
	if err := jr.SubmitReason(text); err != nil {
		return s.rejectionText(err, messages.InvalidInput), nil
	}
	if err := s.repo.Save(ctx, jr); err != nil {
		return "", err
	}

	if !s.publishCard(ctx, jr) {
		return s.msgs.Text(messages.SavedNotNotified), nil
	}
	return s.msgs.Text(messages.ThankYou), nil
}

func (s *JoinRequestService) addMessage(ctx context.Context, jr *model.JoinRequest, text string) (string, error) {
	if err := jr.AddMessage(text); err != nil {
		return s.rejectionText(err, messages.ErrorAddingMsg), nil
	}
	if err := s.repo.Save(ctx, jr); err != nil {
		return "", err
	}

	if err := s.cards.Update(ctx, jr); err != nil {
		s.logger.Error("Error appending message to review card",
			zap.String("request_id", jr.ID()),
			zap.Error(err),
		)
	}

	return s.msgs.Text(messages.MsgAdded), nil
}

// publishCard публикует карточку и сохраняет её ID. false, если карточку опубликовать не удалось.
func (s *JoinRequestService) publishCard(ctx context.Context, jr *model.JoinRequest) bool {
	messageID, err := s.cards.Post(ctx, jr)
	if err != nil {
		s.logger.Error("Error posting review card",
			zap.String("request_id", jr.ID()),
			zap.Error(err),
		)
		s.cards.Alert(ctx, "review card", err)
		return false
	}

	if err := jr.SetAdminMsgID(messageID); err != nil {
		s.logger.Error("Failed to set admin message id", zap.String("request_id", jr.ID()), zap.Error(err))
		return false
	}
	if err := s.repo.Save(ctx, jr); err != nil {
		s.logger.Error("Failed to save admin message id", zap.String("request_id", jr.ID()), zap.Error(err))
		return false
	}
	return true
}

// HandleAdminAction применяет решение администратора.
// Повторное решение не обращается к API; ошибка возвращается только при сбое хранилища.
func (s *JoinRequestService) HandleAdminAction(ctx context.Context, requestID string, adminID int64, adminName string, action AdminAction) (AdminActionResult, error) {
	failKey := messages.ErrorApproving
	if action == ActionDecline {
		failKey = messages.ErrorDeclining
	}

	jr, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return AdminActionResult{Message: s.msgs.Text(failKey)}, err
	}
	if jr == nil {
		return AdminActionResult{Message: s.msgs.Text(messages.RequestNotFound)}, nil
	}

	if jr.IsProcessed() {
		return s.alreadyHandled(), nil
	}

	if !s.authz.IsAdminInBothChats(ctx, adminID) {
		return AdminActionResult{Message: s.msgs.Text(messages.NotAuthorized)}, nil
	}

	log := s.logger.With(
		zap.String("request_id", requestID),
		zap.Int64("admin_id", adminID),
		zap.String("action", string(action)),
	)
	c := jr.Context()

	alreadyInPlace, err := s.applyMembership(ctx, c, action)
	if err != nil {
		log.Error("Admin action failed", zap.Error(err))
		s.cards.Alert(ctx, "admin action "+string(action), err)
		return AdminActionResult{Message: s.msgs.Text(failKey)}, nil
	}
	if alreadyInPlace {
		log.Info("Membership already in desired state")
	}

	if action == ActionApprove {
		err = jr.Approve(adminID, adminName)
	} else {
		err = jr.Decline(adminID, adminName)
	}
	if err != nil {
		if model.IsTransitionError(err, model.ErrCodeAlreadyProcessed) {
			return s.alreadyHandled(), nil
		}
		log.Error("Decision rejected", zap.Error(err))
		return AdminActionResult{Message: s.msgs.Text(failKey)}, nil
	}

	if err := s.repo.Save(ctx, jr); err != nil {
		return AdminActionResult{Message: s.msgs.Text(failKey)}, err
	}

	s.notifyRequester(ctx, c.UserID, action)

	if err := s.cards.Update(ctx, jr); err != nil {
		log.Error("Error updating review card", zap.Error(err))
	}

	log.Info("Join request decided", zap.Bool("already_in_place", alreadyInPlace))

	var key string
	switch {
	case action == ActionApprove && alreadyInPlace:
		key = messages.AlreadyApproved
	case action == ActionApprove:
		key = messages.ActionSuccessApproved
	case alreadyInPlace:
		key = messages.AlreadyDeclined
	default:
		key = messages.ActionSuccessDeclined
	}

	return AdminActionResult{OK: true, Message: s.msgs.Text(key)}, nil
}

// applyMembership вызывает approve/decline во внешнем API.
// true, если API сообщил, что нужное состояние уже достигнуто.
func (s *JoinRequestService) applyMembership(ctx context.Context, c model.JoinRequestContext, action AdminAction) (bool, error) {
	var (
		err     error
		markers []string
	)
	switch action {
	case ActionApprove:
		err = s.authority.ApproveJoinRequest(ctx, c.TargetChatID, c.UserID)
		markers = approveNoopMarkers
	case ActionDecline:
		err = s.authority.DeclineJoinRequest(ctx, c.TargetChatID, c.UserID)
		markers = declineNoopMarkers
	default:
		return false, fmt.Errorf("unknown action %q", action)
	}

	if err == nil {
		return false, nil
	}
	if containsAny(err.Error(), markers) {
		return true, nil
	}
	return false, err
}

func (s *JoinRequestService) notifyRequester(ctx context.Context, userID int64, action AdminAction) {
	keys := []string{messages.DeclinedUser}
	if action == ActionApprove {
		keys = []string{messages.ApprovedUser, messages.ApprovedUserIntro}
	}

	for _, key := range keys {
		if err := s.messenger.SendText(ctx, userID, s.msgs.Text(key)); err != nil {
			s.logger.Warn("Failed to notify user",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return
		}
	}
}

func (s *JoinRequestService) alreadyHandled() AdminActionResult {
	return AdminActionResult{OK: true, Message: s.msgs.Text(messages.RequestProcessed), AlreadyHandled: true}
}

// rejectionText переводит отказ перехода в текст для пользователя
func (s *JoinRequestService) rejectionText(err error, fallback string) string {
	v, ok := model.AsValidationError(err)
	if !ok {
		return s.msgs.Text(fallback)
	}

	switch v.Kind {
	case model.ValidationEmpty:
		return s.msgs.Text(messages.MessageEmpty)
	case model.ValidationReasonTooShort:
		return s.msgs.Text(messages.ReasonTooShort, v.Limit)
	case model.ValidationReasonTooLong:
		return s.msgs.Text(messages.ReasonTooLong, v.Limit)
	case model.ValidationMessageTooLong:
		return s.msgs.Text(messages.MessageTooLong, v.Limit)
	default:
		return s.msgs.Text(fallback)
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
