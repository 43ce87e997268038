package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator обёртка над goose
type Migrator struct {
	db             *sql.DB
	migrationsPath string
	logger         *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{logger.Sugar()})

	// Goose работает с *sql.DB, поэтому создаём его из пула
	return &Migrator{
		db:             stdlib.OpenDBFromPool(pool),
		migrationsPath: migrationsPath,
		logger:         logger,
	}, nil
}

// Run применяет все pending миграции
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("🔄 Applying database migrations...", zap.String("path", mg.migrationsPath))

	if err := goose.UpContext(ctx, mg.db, mg.migrationsPath); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("✅ Migrations applied successfully", zap.Int64("version", version))
	return nil
}

// Version текущая версия схемы
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает sql.DB, но не пул (он управляется в main)
func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}

// gooseLogger направляет вывод goose в zap
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatalf(format, v...)
}
