package base

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB общий интерфейс pgxpool.Pool и тестовых подмен пула
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository базовый репозиторий с общими методами
type Repository struct {
	db DB
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// DB возвращает соединение
func (r *Repository) DB() DB {
	return r.db
}

// QueryRow выполняет запрос и возвращает одну строку
func (r *Repository) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return r.db.QueryRow(ctx, query, args...)
}

// Query выполняет запрос и возвращает множество строк
func (r *Repository) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return r.db.Query(ctx, query, args...)
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
