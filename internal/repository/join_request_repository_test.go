package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testChatID = int64(-1001234567890)
	testReason = "I would like to join because I am interested in the topic and want to participate."
)

func newTestRepository(t *testing.T) (*JoinRequestRepository, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore(store.DefaultTTL)
	repo := NewJoinRequestRepository(st, model.DefaultValidationRules(), zap.NewNop())
	return repo, st
}

func createReviewing(t *testing.T, repo *JoinRequestRepository, userID int64) *model.JoinRequest {
	t.Helper()
	ctx := context.Background()

	jr, err := repo.Create(ctx, model.JoinRequestInput{UserID: userID, TargetChatID: testChatID, DisplayName: "Alice"})
	require.NoError(t, err)
	require.NoError(t, jr.StartCollection())
	require.NoError(t, jr.SubmitReason(testReason))
	require.NoError(t, repo.Save(ctx, jr))
	return jr
}

func TestCreate_AssignsTimeOrderedIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	first, err := repo.Create(ctx, model.JoinRequestInput{UserID: 1, TargetChatID: testChatID, DisplayName: "A"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, model.JoinRequestInput{UserID: 2, TargetChatID: testChatID, DisplayName: "B"})
	require.NoError(t, err)

	assert.Equal(t, model.StatePending, first.State())
	assert.NotEmpty(t, first.ID())
	assert.Less(t, first.ID(), second.ID())
	assert.False(t, first.Context().Timestamp.IsZero())

	found, err := repo.FindByUserID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.ID(), found.ID())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	jr, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, jr)
}

func TestSave_RoundTripsContext(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	jr := createReviewing(t, repo, 10)
	require.NoError(t, jr.SetAdminMsgID(555))
	require.NoError(t, jr.AddMessage("noch etwas"))
	require.NoError(t, repo.Save(ctx, jr))

	loaded, err := repo.FindByID(ctx, jr.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.StateAwaitingReview, loaded.State())
	assert.Equal(t, jr.Context(), loaded.Context())
}

func TestFindByUserID_ClearedAfterDecision(t *testing.T) {
	ctx := context.Background()
	repo, st := newTestRepository(t)

	jr := createReviewing(t, repo, 20)
	require.NoError(t, jr.Approve(1, "admin"))

	// пишем запись в обход Save, чтобы указатель остался
	require.NoError(t, st.Set(ctx, toRecord(jr.Context())))

	found, err := repo.FindByUserID(ctx, 20)
	require.NoError(t, err)
	assert.Nil(t, found)

	pointer, err := st.GetActiveRequestID(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, pointer)
}

func TestSave_ClearsPointerOnTerminalState(t *testing.T) {
	ctx := context.Background()
	repo, st := newTestRepository(t)

	jr := createReviewing(t, repo, 30)
	require.NoError(t, jr.Decline(1, "admin"))
	require.NoError(t, repo.Save(ctx, jr))

	found, err := repo.FindByUserID(ctx, 30)
	require.NoError(t, err)
	assert.Nil(t, found)

	loaded, err := repo.FindByID(ctx, jr.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.StateDeclined, loaded.State())

	pointer, err := st.GetActiveRequestID(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, pointer)
}

func TestFindRecentByStatus_FiltersBeforeLimit(t *testing.T) {
	ctx := context.Background()
	repo, st := newTestRepository(t)

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base.Add(time.Hour) }
	repo.SetClock(clock)
	st.SetClock(clock)

	create := func(i int) *model.JoinRequest {
		jr, err := repo.Create(ctx, model.JoinRequestInput{
			RequestID:    fmt.Sprintf("req-%02d", i),
			UserID:       int64(100 + i),
			TargetChatID: testChatID,
			DisplayName:  fmt.Sprintf("User %d", i),
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, jr.StartCollection())
		require.NoError(t, jr.SubmitReason(testReason))
		return jr
	}

	for i := 1; i <= 5; i++ {
		jr := create(i)
		require.NoError(t, jr.Approve(1, "admin"))
		require.NoError(t, repo.Save(ctx, jr))
	}
	for i := 6; i <= 15; i++ {
		require.NoError(t, repo.Save(ctx, create(i)))
	}

	pending, err := repo.FindRecentByStatus(ctx, store.FilterPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 10)
	assert.Equal(t, "req-15", pending[0].ID())
	for _, jr := range pending {
		assert.False(t, jr.IsProcessed())
	}

	completed, err := repo.FindRecentByStatus(ctx, store.FilterCompleted, 10)
	require.NoError(t, err)
	require.Len(t, completed, 5)
	assert.Equal(t, "req-05", completed[0].ID())

	recent, err := repo.FindRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultListLimit)
}

func TestMarkPendingAsStaleResolved(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	collecting, err := repo.Create(ctx, model.JoinRequestInput{UserID: 40, TargetChatID: testChatID, DisplayName: "C"})
	require.NoError(t, err)
	require.NoError(t, collecting.StartCollection())
	require.NoError(t, repo.Save(ctx, collecting))

	reviewing := createReviewing(t, repo, 41)

	decided := createReviewing(t, repo, 42)
	require.NoError(t, decided.Approve(1, "admin"))
	require.NoError(t, repo.Save(ctx, decided))

	changed, err := repo.MarkPendingAsStaleResolved(ctx,
		[]string{collecting.ID(), reviewing.ID(), decided.ID(), "missing"}, "system")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	loaded, err := repo.FindByID(ctx, collecting.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.StateDeclined, loaded.State())
	assert.Equal(t, "system", loaded.Context().Decision.AdminName)

	loaded, err = repo.FindByID(ctx, reviewing.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.StateDeclined, loaded.State())

	loaded, err = repo.FindByID(ctx, decided.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StateApproved, loaded.State())

	found, err := repo.FindByUserID(ctx, 41)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(time.Hour)
	repo := NewJoinRequestRepository(st, model.DefaultValidationRules(), zap.NewNop())

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return now })
	st.SetClock(func() time.Time { return now })

	jr, err := repo.Create(ctx, model.JoinRequestInput{UserID: 50, TargetChatID: testChatID, DisplayName: "E"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	deleted, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	loaded, err := repo.FindByID(ctx, jr.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

var errStoreDown = errors.New("store unavailable")

// failingStore работает поверх MemoryStore и возвращает ошибку в выбранных операциях
type failingStore struct {
	*store.MemoryStore
	failSet bool
	failGet bool
}

func (s *failingStore) Set(ctx context.Context, record *store.RequestRecord) error {
	if s.failSet {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, record)
}

func (s *failingStore) Get(ctx context.Context, requestID string) (*store.RequestRecord, error) {
	if s.failGet {
		return nil, errStoreDown
	}
	return s.MemoryStore.Get(ctx, requestID)
}

func TestStoreFailuresReachCaller(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{MemoryStore: store.NewMemoryStore(store.DefaultTTL)}
	repo := NewJoinRequestRepository(st, model.DefaultValidationRules(), zap.NewNop())

	jr := createReviewing(t, repo, 50)

	st.failSet = true
	_, err := repo.Create(ctx, model.JoinRequestInput{UserID: 51, TargetChatID: testChatID, DisplayName: "B"})
	require.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "create join request")

	require.NoError(t, jr.AddMessage("noch etwas"))
	err = repo.Save(ctx, jr)
	require.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "save join request")

	st.failSet = false
	st.failGet = true
	found, err := repo.FindByID(ctx, jr.ID())
	require.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "find join request")
	assert.Nil(t, found)

	_, err = repo.FindByUserID(ctx, 50)
	require.ErrorIs(t, err, errStoreDown)

	st.failGet = false
	loaded, err := repo.FindByID(ctx, jr.ID())
	require.NoError(t, err)
	assert.Empty(t, loaded.Context().AdditionalMessages)
}
