package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/config"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := OpenStorage(ctx, &config.Config{StorageType: store.TypeMemory, ReasonTTL: time.Hour}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &store.MemoryStore{}, s.Store)
		assert.NoError(t, s.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gate.db")
		s, err := OpenStorage(ctx, &config.Config{StorageType: store.TypeSQLite, SQLitePath: path, ReasonTTL: time.Hour}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &store.SQLiteStore{}, s.Store)
		assert.NoError(t, s.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStorage(ctx, &config.Config{StorageType: "redis"}, zap.NewNop())
		assert.Error(t, err)
	})
}
