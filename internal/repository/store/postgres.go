package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/base"
)

// PostgresStore долговременное хранилище на PostgreSQL.
// Лента заявок не хранится отдельно: она выводится из таблицы join_requests,
// request_id (UUIDv7) служит ключом сортировки.
type PostgresStore struct {
	*base.Repository
	ttl time.Duration
	now func() time.Time
}

// NewPostgresStore создаёт хранилище поверх пула соединений
func NewPostgresStore(db base.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		Repository: base.NewRepository(db),
		ttl:        ttl,
		now:        time.Now,
	}
}

// cutoff время, раньше которого записи считаются просроченными
func (s *PostgresStore) cutoff() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.ttl)
}

// Set создаёт или обновляет запись. Решение, однажды записанное, не перезаписывается.
func (s *PostgresStore) Set(ctx context.Context, record *RequestRecord) error {
	query := `
		INSERT INTO join_requests (
			request_id, user_id, target_chat_id, display_name, username, reason,
			additional_messages, admin_msg_id, created_at,
			decision_status, decision_admin_id, decision_admin_name, decision_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (request_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			additional_messages = EXCLUDED.additional_messages,
			admin_msg_id = EXCLUDED.admin_msg_id,
			decision_status = COALESCE(join_requests.decision_status, EXCLUDED.decision_status),
			decision_admin_id = COALESCE(join_requests.decision_admin_id, EXCLUDED.decision_admin_id),
			decision_admin_name = CASE WHEN join_requests.decision_status IS NULL
				THEN EXCLUDED.decision_admin_name ELSE join_requests.decision_admin_name END,
			decision_at = COALESCE(join_requests.decision_at, EXCLUDED.decision_at),
			updated_at = now()
	`

	messages := record.AdditionalMessages
	if messages == nil {
		messages = []string{}
	}

	_, err := s.DB().Exec(ctx, query,
		record.RequestID,
		record.UserID,
		record.TargetChatID,
		record.DisplayName,
		record.Username,
		record.Reason,
		messages,
		record.AdminMsgID,
		record.Timestamp,
		nullString(record.DecisionStatus),
		record.DecisionAdminID,
		record.DecisionAdminName,
		record.DecisionAt,
	)
	if err != nil {
		return fmt.Errorf("upsert join request: %w", err)
	}

	return nil
}

// Get получает запись по ID
func (s *PostgresStore) Get(ctx context.Context, requestID string) (*RequestRecord, error) {
	query := `
		SELECT request_id, user_id, target_chat_id, display_name, username, reason,
			additional_messages, admin_msg_id, created_at,
			decision_status, decision_admin_id, decision_admin_name, decision_at
		FROM join_requests
		WHERE request_id = $1 AND created_at > $2
	`

	var (
		record         RequestRecord
		decisionStatus *string
	)
	err := s.QueryRow(ctx, query, requestID, s.cutoff()).Scan(
		&record.RequestID,
		&record.UserID,
		&record.TargetChatID,
		&record.DisplayName,
		&record.Username,
		&record.Reason,
		&record.AdditionalMessages,
		&record.AdminMsgID,
		&record.Timestamp,
		&decisionStatus,
		&record.DecisionAdminID,
		&record.DecisionAdminName,
		&record.DecisionAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get join request: %w", err)
	}

	if decisionStatus != nil {
		record.DecisionStatus = *decisionStatus
	}
	if record.AdditionalMessages == nil {
		record.AdditionalMessages = []string{}
	}

	return &record, nil
}

// SetUserActiveRequest сохраняет указатель на активную заявку пользователя
func (s *PostgresStore) SetUserActiveRequest(ctx context.Context, userID int64, requestID string) error {
	query := `
		INSERT INTO user_active_requests (user_id, request_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET request_id = EXCLUDED.request_id, updated_at = now()
	`

	if _, err := s.DB().Exec(ctx, query, userID, requestID); err != nil {
		return fmt.Errorf("set active request: %w", err)
	}
	return nil
}

// ClearUserActiveRequest удаляет указатель
func (s *PostgresStore) ClearUserActiveRequest(ctx context.Context, userID int64) error {
	query := `DELETE FROM user_active_requests WHERE user_id = $1`

	if _, err := s.DB().Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("clear active request: %w", err)
	}
	return nil
}

// GetActiveRequestID разрешает указатель; устаревший указатель удаляется
func (s *PostgresStore) GetActiveRequestID(ctx context.Context, userID int64) (string, error) {
	query := `
		SELECT r.request_id
		FROM user_active_requests p
		JOIN join_requests r ON r.request_id = p.request_id
		WHERE p.user_id = $1 AND r.decision_status IS NULL AND r.created_at > $2
	`

	var requestID string
	err := s.QueryRow(ctx, query, userID, s.cutoff()).Scan(&requestID)
	if err == nil {
		return requestID, nil
	}
	if !base.IsNotFound(err) {
		return "", fmt.Errorf("get active request: %w", err)
	}

	if err := s.ClearUserActiveRequest(ctx, userID); err != nil {
		return "", err
	}
	return "", nil
}

// AddToTimeline ничего не делает: лента строится по самой таблице
func (s *PostgresStore) AddToTimeline(context.Context, string, time.Time) error {
	return nil
}

// RecentRequestIDs возвращает последние заявки, фильтруя до LIMIT
func (s *PostgresStore) RecentRequestIDs(ctx context.Context, limit int, filter StatusFilter) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	query := `SELECT request_id FROM join_requests WHERE created_at > $1`
	switch filter {
	case FilterPending:
		query += ` AND decision_status IS NULL`
	case FilterCompleted:
		query += ` AND decision_status IS NOT NULL`
	}
	query += ` ORDER BY request_id DESC LIMIT $2`

	rows, err := s.Query(ctx, query, s.cutoff(), limit)
	if err != nil {
		return nil, fmt.Errorf("get recent requests: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan request id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return ids, nil
}

// DeleteExpired удаляет просроченные заявки вместе с их указателями
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-s.ttl)

	_, err := s.ExecAffected(ctx, `
		DELETE FROM user_active_requests
		WHERE request_id IN (SELECT request_id FROM join_requests WHERE created_at <= $1)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired pointers: %w", err)
	}

	deleted, err := s.ExecAffected(ctx, `DELETE FROM join_requests WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired requests: %w", err)
	}

	return deleted, nil
}

// Close ничего не делает: пулом управляет main
func (s *PostgresStore) Close() error {
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
