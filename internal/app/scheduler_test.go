package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestScheduler_RunsImmediatelyAndOnSchedule(t *testing.T) {
	purger := &countingPurger{}
	s := NewScheduler(purger, "@every 1s", time.UTC, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, int32(1), purger.calls.Load())
	assert.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingPurger{}, "not a schedule", time.UTC, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_PurgeErrorIsLogged(t *testing.T) {
	purger := &countingPurger{err: errors.New("db down")}
	s := NewScheduler(purger, "@every 1h", time.UTC, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Equal(t, int32(1), purger.calls.Load())
}

func TestScheduler_CancelledContextSkipsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	purger := &countingPurger{}
	s := NewScheduler(purger, "@every 1h", time.UTC, zap.NewNop())
	require.NoError(t, s.Start(ctx))
	s.Stop()

	assert.Zero(t, purger.calls.Load())
}
