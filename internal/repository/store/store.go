// Package store хранит сериализованные заявки и вторичные индексы:
// указатель на активную заявку пользователя и упорядоченную ленту заявок.
package store

import (
	"context"
	"fmt"
	"time"
)

// StatusFilter фильтр ленты заявок
type StatusFilter string

const (
	FilterAll       StatusFilter = ""
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// Допустимые значения DecisionStatus в записи
const (
	DecisionApproved = "approved"
	DecisionDeclined = "declined"
)

// DefaultTTL срок жизни записи, если он не задан
const DefaultTTL = 7 * 24 * time.Hour

// timelineCap ограничивает ленту in-memory хранилища
const timelineCap = 1000

// RequestRecord сохраняемое представление заявки
type RequestRecord struct {
	RequestID          string     `json:"request_id"`
	UserID             int64      `json:"user_id"`
	TargetChatID       int64      `json:"target_chat_id"`
	DisplayName        string     `json:"display_name"`
	Username           string     `json:"username,omitempty"`
	Reason             string     `json:"reason,omitempty"`
	AdditionalMessages []string   `json:"additional_messages"`
	AdminMsgID         *int       `json:"admin_msg_id,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
	DecisionStatus     string     `json:"decision_status,omitempty"`
	DecisionAdminID    *int64     `json:"decision_admin_id,omitempty"`
	DecisionAdminName  string     `json:"decision_admin_name,omitempty"`
	DecisionAt         *time.Time `json:"decision_at,omitempty"`
}

// IsDecided проверяет, есть ли у записи решение
func (r *RequestRecord) IsDecided() bool {
	return r.DecisionStatus != ""
}

// Matches проверяет запись на соответствие фильтру
func (r *RequestRecord) Matches(filter StatusFilter) bool {
	switch filter {
	case FilterPending:
		return !r.IsDecided()
	case FilterCompleted:
		return r.IsDecided()
	default:
		return true
	}
}

// Clone возвращает глубокую копию записи
func (r *RequestRecord) Clone() *RequestRecord {
	c := *r
	c.AdditionalMessages = append([]string{}, r.AdditionalMessages...)
	if r.AdminMsgID != nil {
		v := *r.AdminMsgID
		c.AdminMsgID = &v
	}
	if r.DecisionAdminID != nil {
		v := *r.DecisionAdminID
		c.DecisionAdminID = &v
	}
	if r.DecisionAt != nil {
		v := *r.DecisionAt
		c.DecisionAt = &v
	}
	return &c
}

// StateStore абстракция хранилища заявок.
// Отсутствующая или просроченная запись возвращается как nil без ошибки.
type StateStore interface {
	Set(ctx context.Context, record *RequestRecord) error
	Get(ctx context.Context, requestID string) (*RequestRecord, error)

	SetUserActiveRequest(ctx context.Context, userID int64, requestID string) error
	ClearUserActiveRequest(ctx context.Context, userID int64) error
	// GetActiveRequestID возвращает "" если указателя нет или заявка уже закрыта/удалена
	GetActiveRequestID(ctx context.Context, userID int64) (string, error)

	AddToTimeline(ctx context.Context, requestID string, timestamp time.Time) error
	// RecentRequestIDs возвращает до limit идентификаторов, от новых к старым.
	// Фильтр применяется до ограничения выборки.
	RecentRequestIDs(ctx context.Context, limit int, filter StatusFilter) ([]string, error)

	// DeleteExpired удаляет записи, созданные раньше now-TTL
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	Close() error
}

// Type тип хранилища
type Type string

const (
	TypeMemory   Type = "memory"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
)

// ParseType разбирает значение STORAGE_TYPE
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeMemory, TypeSQLite, TypePostgres:
		return Type(s), nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown storage type %q", s)
	}
}

func expired(ts time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(ts) > ttl
}
