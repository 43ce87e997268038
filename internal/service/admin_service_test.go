package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClampListLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: DefaultListLimit},
		{in: -3, want: DefaultListLimit},
		{in: 1, want: 1},
		{in: 15, want: 15},
		{in: 20, want: 20},
		{in: 500, want: MaxListLimit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampListLimit(tt.in), "input %d", tt.in)
	}
}

func TestAdminService_ResolveStale(t *testing.T) {
	ctx := context.Background()
	rules := model.DefaultValidationRules()
	repo := repository.NewJoinRequestRepository(store.NewMemoryStore(store.DefaultTTL), rules, zap.NewNop())
	svc := NewAdminService(repo, zap.NewNop())

	marked, err := svc.ResolveStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked)

	for i := int64(1); i <= 3; i++ {
		jr, err := repo.Create(ctx, model.JoinRequestInput{UserID: i, TargetChatID: targetChat, DisplayName: "U"})
		require.NoError(t, err)
		require.NoError(t, jr.StartCollection())
		require.NoError(t, repo.Save(ctx, jr))
	}

	pending, err := svc.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	marked, err = svc.ResolveStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, marked)

	pending, err = svc.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	completed, err := svc.Completed(ctx, 50)
	require.NoError(t, err)
	require.Len(t, completed, 3)
	for _, jr := range completed {
		assert.Equal(t, model.StateDeclined, jr.State())
		assert.Equal(t, CleanupResolver, jr.Context().Decision.AdminName)
	}
}
