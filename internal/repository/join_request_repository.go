package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListLimit размер выборки по умолчанию для списков заявок
const DefaultListLimit = 10

// JoinRequestRepository сохраняет заявки и поддерживает индексы по пользователю и ленте
type JoinRequestRepository struct {
	store  store.StateStore
	rules  model.ValidationRules
	logger *zap.Logger
	now    func() time.Time
}

// NewJoinRequestRepository создаёт репозиторий поверх хранилища
func NewJoinRequestRepository(st store.StateStore, rules model.ValidationRules, logger *zap.Logger) *JoinRequestRepository {
	return &JoinRequestRepository{
		store:  st,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (r *JoinRequestRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Create создаёт новую заявку в состоянии pending
func (r *JoinRequestRepository) Create(ctx context.Context, input model.JoinRequestInput) (*model.JoinRequest, error) {
	if input.RequestID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate request id: %w", err)
		}
		input.RequestID = id.String()
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = r.now().UTC().Truncate(time.Millisecond)
	}

	jr := model.NewJoinRequest(input, r.rules)
	r.attach(jr)

	// Сначала запись, потом индексы: индекс не должен ссылаться на несуществующую заявку
	if err := r.store.Set(ctx, toRecord(jr.Context())); err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}
	if err := r.store.SetUserActiveRequest(ctx, input.UserID, input.RequestID); err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}
	if err := r.store.AddToTimeline(ctx, input.RequestID, input.Timestamp); err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}

	r.logger.Info("Join request created",
		zap.String("request_id", input.RequestID),
		zap.Int64("user_id", input.UserID),
		zap.Int64("target_chat_id", input.TargetChatID),
	)

	return jr, nil
}

// FindByID загружает заявку. Отсутствующая или просроченная заявка возвращается как nil.
func (r *JoinRequestRepository) FindByID(ctx context.Context, requestID string) (*model.JoinRequest, error) {
	record, err := r.store.Get(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find join request: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	jr, err := model.RestoreJoinRequest(fromRecord(record), r.rules)
	if err != nil {
		return nil, err
	}
	r.attach(jr)

	return jr, nil
}

// FindByUserID находит незакрытую заявку пользователя по указателю
func (r *JoinRequestRepository) FindByUserID(ctx context.Context, userID int64) (*model.JoinRequest, error) {
	requestID, err := r.store.GetActiveRequestID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find active request: %w", err)
	}
	if requestID == "" {
		return nil, nil
	}

	jr, err := r.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if jr == nil || jr.IsProcessed() {
		if err := r.store.ClearUserActiveRequest(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear stale pointer: %w", err)
		}
		r.logger.Debug("Cleared stale active request pointer",
			zap.Int64("user_id", userID),
			zap.String("request_id", requestID),
		)
		return nil, nil
	}

	return jr, nil
}

// FindRecentByStatus возвращает до limit последних заявок с нужным статусом, от новых к старым
func (r *JoinRequestRepository) FindRecentByStatus(ctx context.Context, filter store.StatusFilter, limit int) ([]*model.JoinRequest, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	ids, err := r.store.RecentRequestIDs(ctx, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("find recent requests: %w", err)
	}

	requests := make([]*model.JoinRequest, 0, len(ids))
	for _, id := range ids {
		jr, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// между выборкой ленты и чтением запись могла истечь
		if jr == nil {
			continue
		}
		requests = append(requests, jr)
	}

	return requests, nil
}

// FindRecent возвращает последние заявки без фильтра по статусу
func (r *JoinRequestRepository) FindRecent(ctx context.Context, limit int) ([]*model.JoinRequest, error) {
	return r.FindRecentByStatus(ctx, store.FilterAll, limit)
}

// Save сохраняет контекст заявки и обновляет указатель на активную заявку
func (r *JoinRequestRepository) Save(ctx context.Context, jr *model.JoinRequest) error {
	c := jr.Context()

	if err := r.store.Set(ctx, toRecord(c)); err != nil {
		return fmt.Errorf("save join request: %w", err)
	}

	switch state := jr.State(); {
	case state == model.StateCollectingReason || state == model.StateAwaitingReview:
		if err := r.store.SetUserActiveRequest(ctx, c.UserID, c.RequestID); err != nil {
			return fmt.Errorf("save join request: %w", err)
		}
	case state.IsTerminal():
		if err := r.store.ClearUserActiveRequest(ctx, c.UserID); err != nil {
			return fmt.Errorf("save join request: %w", err)
		}
	}

	return nil
}

// MarkPendingAsStaleResolved закрывает зависшие заявки отклонением в обход автомата.
// Уже закрытые и отсутствующие заявки пропускаются; возвращает число изменённых.
func (r *JoinRequestRepository) MarkPendingAsStaleResolved(ctx context.Context, requestIDs []string, resolvedBy string) (int, error) {
	changed := 0
	now := r.now().UTC()

	for _, id := range requestIDs {
		record, err := r.store.Get(ctx, id)
		if err != nil {
			return changed, fmt.Errorf("load request %s: %w", id, err)
		}
		if record == nil || record.IsDecided() {
			continue
		}

		decidedAt := now
		var resolver int64 // системное закрытие без администратора
		record.DecisionStatus = store.DecisionDeclined
		record.DecisionAdminID = &resolver
		record.DecisionAdminName = resolvedBy
		record.DecisionAt = &decidedAt

		if err := r.store.Set(ctx, record); err != nil {
			return changed, fmt.Errorf("resolve request %s: %w", id, err)
		}
		if err := r.store.ClearUserActiveRequest(ctx, record.UserID); err != nil {
			return changed, fmt.Errorf("resolve request %s: %w", id, err)
		}
		changed++
	}

	r.logger.Info("Stale requests resolved",
		zap.Int("requested", len(requestIDs)),
		zap.Int("changed", changed),
		zap.String("resolved_by", resolvedBy),
	)

	return changed, nil
}

// PurgeExpired удаляет просроченные заявки из хранилища
func (r *JoinRequestRepository) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := r.store.DeleteExpired(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired requests: %w", err)
	}
	return deleted, nil
}

// attach подписывает логгер на переходы заявки
func (r *JoinRequestRepository) attach(jr *model.JoinRequest) {
	jr.SetClock(r.now)
	jr.Observe(func(jr *model.JoinRequest, from, to model.RequestState) {
		r.logger.Info("JoinRequest lifecycle transition",
			zap.String("request_id", jr.ID()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	})
}

func toRecord(c model.JoinRequestContext) *store.RequestRecord {
	record := &store.RequestRecord{
		RequestID:          c.RequestID,
		UserID:             c.UserID,
		TargetChatID:       c.TargetChatID,
		DisplayName:        c.DisplayName,
		Username:           c.Username,
		Reason:             c.Reason,
		AdditionalMessages: c.AdditionalMessages,
		AdminMsgID:         c.AdminMsgID,
		Timestamp:          c.Timestamp,
	}
	if record.AdditionalMessages == nil {
		record.AdditionalMessages = []string{}
	}

	if d := c.Decision; d != nil {
		adminID := d.AdminID
		at := d.DecidedAt
		record.DecisionStatus = string(d.Status)
		record.DecisionAdminID = &adminID
		record.DecisionAdminName = d.AdminName
		record.DecisionAt = &at
	}

	return record
}

func fromRecord(record *store.RequestRecord) model.JoinRequestContext {
	c := model.JoinRequestContext{
		RequestID:          record.RequestID,
		UserID:             record.UserID,
		TargetChatID:       record.TargetChatID,
		DisplayName:        record.DisplayName,
		Username:           record.Username,
		Reason:             record.Reason,
		AdditionalMessages: record.AdditionalMessages,
		AdminMsgID:         record.AdminMsgID,
		Timestamp:          record.Timestamp,
	}

	if record.IsDecided() {
		d := &model.Decision{
			Status:    model.DecisionStatus(record.DecisionStatus),
			AdminName: record.DecisionAdminName,
		}
		if record.DecisionAdminID != nil {
			d.AdminID = *record.DecisionAdminID
		}
		if record.DecisionAt != nil {
			d.DecidedAt = *record.DecisionAt
		}
		c.Decision = d
	}

	return c
}
