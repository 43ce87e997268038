package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"go.uber.org/zap"
)

// Ограничения выборок админ-команд
const (
	DefaultListLimit = 10
	MaxListLimit     = 20
	CleanupLimit     = 100
	CleanupResolver  = "system"
)

// ClampListLimit приводит запрошенный размер списка к допустимому
func ClampListLimit(n int) int {
	if n < 1 {
		return DefaultListLimit
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}

// AdminService операции для админ-команд и фоновой очистки
type AdminService struct {
	repo   JoinRequestRepository
	logger *zap.Logger
}

func NewAdminService(repo JoinRequestRepository, logger *zap.Logger) *AdminService {
	return &AdminService{repo: repo, logger: logger}
}

// Pending последние нерассмотренные заявки
func (s *AdminService) Pending(ctx context.Context, limit int) ([]*model.JoinRequest, error) {
	return s.repo.FindRecentByStatus(ctx, store.FilterPending, ClampListLimit(limit))
}

// Completed последние рассмотренные заявки
func (s *AdminService) Completed(ctx context.Context, limit int) ([]*model.JoinRequest, error) {
	return s.repo.FindRecentByStatus(ctx, store.FilterCompleted, ClampListLimit(limit))
}

// StalePending заявки-кандидаты на массовое закрытие
func (s *AdminService) StalePending(ctx context.Context) ([]*model.JoinRequest, error) {
	return s.repo.FindRecentByStatus(ctx, store.FilterPending, CleanupLimit)
}

// ResolveStale закрывает все зависшие заявки отклонением
func (s *AdminService) ResolveStale(ctx context.Context) (int, error) {
	pending, err := s.StalePending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(pending))
	for _, jr := range pending {
		ids = append(ids, jr.ID())
	}

	marked, err := s.repo.MarkPendingAsStaleResolved(ctx, ids, CleanupResolver)
	if err != nil {
		return marked, fmt.Errorf("resolve stale requests: %w", err)
	}

	s.logger.Info("Cleanup: marked pending as stale",
		zap.Int("marked", marked),
		zap.Int("total", len(ids)),
	)
	return marked, nil
}

// PurgeExpired удаляет просроченные заявки
func (s *AdminService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Expired join requests purged", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
