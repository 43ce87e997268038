package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger удаляет просроченные заявки
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	purger   Purger
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewScheduler(purger Purger, schedule string, loc *time.Location, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		purger:   purger,
		schedule: schedule,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start регистрирует очистку по расписанию и сразу выполняет её один раз
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, func() { s.purge(ctx) }); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", s.schedule, err)
	}

	s.purge(ctx)
	s.cron.Start()
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущей задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) purge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	deleted, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to purge expired requests", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Expired requests purged", zap.Int64("deleted", deleted))
	}
}

// cronLogger направляет служебные сообщения cron в zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
