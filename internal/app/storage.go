package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gatekeeper_bot/internal/config"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage выбранное хранилище и функция освобождения ресурсов
type Storage struct {
	Store store.StateStore
	close []func() error
}

// Close освобождает ресурсы в обратном порядке
func (s *Storage) Close() error {
	var firstErr error
	for i := len(s.close) - 1; i >= 0; i-- {
		if err := s.close[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenStorage создаёт хранилище по STORAGE_TYPE; для postgres применяет миграции
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageType {
	case store.TypeMemory:
		logger.Warn("Using in-memory storage, requests are lost on restart")
		st := store.NewMemoryStore(cfg.ReasonTTL)
		return &Storage{Store: st, close: []func() error{st.Close}}, nil

	case store.TypeSQLite:
		st, err := store.OpenSQLite(cfg.SQLitePath, cfg.ReasonTTL)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ SQLite storage ready", zap.String("path", cfg.SQLitePath))
		return &Storage{Store: st, close: []func() error{st.Close}}, nil

	case store.TypePostgres:
		return openPostgres(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	migrator, err := NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	st := store.NewPostgresStore(pool, cfg.ReasonTTL)
	return &Storage{
		Store: st,
		close: []func() error{
			func() error { pool.Close(); return nil },
			st.Close,
		},
	}, nil
}
