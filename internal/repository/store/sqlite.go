package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// sqliteRequest строка таблицы join_requests. Время хранится в миллисекундах Unix,
// чтобы сравнения в SQL не зависели от строкового формата дат.
type sqliteRequest struct {
	RequestID          string   `gorm:"primaryKey;column:request_id"`
	UserID             int64    `gorm:"not null;index"`
	TargetChatID       int64    `gorm:"not null"`
	DisplayName        string   `gorm:"not null"`
	Username           string   `gorm:"not null;default:''"`
	Reason             string   `gorm:"not null;default:''"`
	AdditionalMessages []string `gorm:"serializer:json"`
	AdminMsgID         *int
	CreatedAtMs        int64   `gorm:"column:created_at_ms;not null;index"`
	DecisionStatus     *string `gorm:"index"`
	DecisionAdminID    *int64
	DecisionAdminName  string `gorm:"not null;default:''"`
	DecisionAtMs       *int64 `gorm:"column:decision_at_ms"`
	UpdatedAtMs        int64  `gorm:"column:updated_at_ms"`
}

func (sqliteRequest) TableName() string { return "join_requests" }

type sqliteActiveRequest struct {
	UserID      int64  `gorm:"primaryKey;autoIncrement:false"`
	RequestID   string `gorm:"not null;index"`
	UpdatedAtMs int64  `gorm:"column:updated_at_ms"`
}

func (sqliteActiveRequest) TableName() string { return "user_active_requests" }

// SQLiteStore долговременное хранилище на SQLite для одиночного инстанса
type SQLiteStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite открывает базу по пути (":memory:" для временной) и применяет схему
func OpenSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite handle: %w", err)
	}
	// SQLite сериализует запись, а :memory: живёт только в одном соединении
	sqlDB.SetMaxOpenConns(1)

	return NewSQLiteStore(db, ttl)
}

// NewSQLiteStore создаёт хранилище поверх открытого gorm.DB
func NewSQLiteStore(db *gorm.DB, ttl time.Duration) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&sqliteRequest{}, &sqliteActiveRequest{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// SetClock подменяет источник времени (для тестов)
func (s *SQLiteStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SQLiteStore) cutoffMs() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return s.now().Add(-s.ttl).UnixMilli()
}

// Set создаёт или обновляет запись, не перезаписывая уже принятое решение
func (s *SQLiteStore) Set(ctx context.Context, record *RequestRecord) error {
	row := toSQLiteRow(record)
	row.UpdatedAtMs = s.now().UnixMilli()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "request_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reason":              gorm.Expr("excluded.reason"),
			"additional_messages": gorm.Expr("excluded.additional_messages"),
			"admin_msg_id":        gorm.Expr("excluded.admin_msg_id"),
			"decision_status":     gorm.Expr("COALESCE(join_requests.decision_status, excluded.decision_status)"),
			"decision_admin_id":   gorm.Expr("COALESCE(join_requests.decision_admin_id, excluded.decision_admin_id)"),
			"decision_admin_name": gorm.Expr("CASE WHEN join_requests.decision_status IS NULL THEN excluded.decision_admin_name ELSE join_requests.decision_admin_name END"),
			"decision_at_ms":      gorm.Expr("COALESCE(join_requests.decision_at_ms, excluded.decision_at_ms)"),
			"updated_at_ms":       gorm.Expr("excluded.updated_at_ms"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert join request: %w", err)
	}

	return nil
}

// Get получает запись по ID
func (s *SQLiteStore) Get(ctx context.Context, requestID string) (*RequestRecord, error) {
	var row sqliteRequest
	err := s.db.WithContext(ctx).
		Where("request_id = ? AND created_at_ms > ?", requestID, s.cutoffMs()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get join request: %w", err)
	}

	return fromSQLiteRow(&row), nil
}

func (s *SQLiteStore) SetUserActiveRequest(ctx context.Context, userID int64, requestID string) error {
	row := sqliteActiveRequest{UserID: userID, RequestID: requestID, UpdatedAtMs: s.now().UnixMilli()}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_id", "updated_at_ms"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set active request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearUserActiveRequest(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&sqliteActiveRequest{}).Error
	if err != nil {
		return fmt.Errorf("clear active request: %w", err)
	}
	return nil
}

// GetActiveRequestID разрешает указатель; устаревший указатель удаляется
func (s *SQLiteStore) GetActiveRequestID(ctx context.Context, userID int64) (string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Table("user_active_requests AS p").
		Joins("JOIN join_requests r ON r.request_id = p.request_id").
		Where("p.user_id = ? AND r.decision_status IS NULL AND r.created_at_ms > ?", userID, s.cutoffMs()).
		Limit(1).
		Pluck("r.request_id", &ids).Error
	if err != nil {
		return "", fmt.Errorf("get active request: %w", err)
	}

	if len(ids) > 0 {
		return ids[0], nil
	}

	if err := s.ClearUserActiveRequest(ctx, userID); err != nil {
		return "", err
	}
	return "", nil
}

// AddToTimeline ничего не делает: лента строится по самой таблице
func (s *SQLiteStore) AddToTimeline(context.Context, string, time.Time) error {
	return nil
}

func (s *SQLiteStore) RecentRequestIDs(ctx context.Context, limit int, filter StatusFilter) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	query := s.db.WithContext(ctx).Model(&sqliteRequest{}).Where("created_at_ms > ?", s.cutoffMs())
	switch filter {
	case FilterPending:
		query = query.Where("decision_status IS NULL")
	case FilterCompleted:
		query = query.Where("decision_status IS NOT NULL")
	}

	ids := make([]string, 0, limit)
	if err := query.Order("request_id DESC").Limit(limit).Pluck("request_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("get recent requests: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-s.ttl).UnixMilli()

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expiredIDs := tx.Model(&sqliteRequest{}).Select("request_id").Where("created_at_ms <= ?", cutoff)
		if err := tx.Where("request_id IN (?)", expiredIDs).Delete(&sqliteActiveRequest{}).Error; err != nil {
			return fmt.Errorf("delete expired pointers: %w", err)
		}

		res := tx.Where("created_at_ms <= ?", cutoff).Delete(&sqliteRequest{})
		if res.Error != nil {
			return fmt.Errorf("delete expired requests: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toSQLiteRow(r *RequestRecord) sqliteRequest {
	row := sqliteRequest{
		RequestID:          r.RequestID,
		UserID:             r.UserID,
		TargetChatID:       r.TargetChatID,
		DisplayName:        r.DisplayName,
		Username:           r.Username,
		Reason:             r.Reason,
		AdditionalMessages: r.AdditionalMessages,
		AdminMsgID:         r.AdminMsgID,
		CreatedAtMs:        r.Timestamp.UnixMilli(),
		DecisionStatus:     nullString(r.DecisionStatus),
		DecisionAdminID:    r.DecisionAdminID,
		DecisionAdminName:  r.DecisionAdminName,
	}
	if row.AdditionalMessages == nil {
		row.AdditionalMessages = []string{}
	}
	if r.DecisionAt != nil {
		ms := r.DecisionAt.UnixMilli()
		row.DecisionAtMs = &ms
	}
	return row
}

func fromSQLiteRow(row *sqliteRequest) *RequestRecord {
	r := &RequestRecord{
		RequestID:          row.RequestID,
		UserID:             row.UserID,
		TargetChatID:       row.TargetChatID,
		DisplayName:        row.DisplayName,
		Username:           row.Username,
		Reason:             row.Reason,
		AdditionalMessages: row.AdditionalMessages,
		AdminMsgID:         row.AdminMsgID,
		Timestamp:          time.UnixMilli(row.CreatedAtMs).UTC(),
		DecisionAdminID:    row.DecisionAdminID,
		DecisionAdminName:  row.DecisionAdminName,
	}
	if r.AdditionalMessages == nil {
		r.AdditionalMessages = []string{}
	}
	if row.DecisionStatus != nil {
		r.DecisionStatus = *row.DecisionStatus
	}
	if row.DecisionAtMs != nil {
		at := time.UnixMilli(*row.DecisionAtMs).UTC()
		r.DecisionAt = &at
	}
	return r
}
