package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/gatekeeper_bot/internal/controller/telegramtest"
	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFlow struct {
	initErr   error
	reply     string
	replyErr  error
	gotUser   service.Requester
	gotChatID int64
	gotText   string
}

func (f *fakeFlow) InitializeRequest(_ context.Context, user service.Requester, targetChatID int64) error {
	f.gotUser, f.gotChatID = user, targetChatID
	return f.initErr
}

func (f *fakeFlow) HandleUserMessage(_ context.Context, _ int64, text string) (string, error) {
	f.gotText = text
	return f.reply, f.replyErr
}

func (f *fakeFlow) Instructions(context.Context, int64) (string, error) {
	return f.reply, f.replyErr
}

type fakeAdmin struct {
	items  []*model.JoinRequest
	marked int
	limit  int
}

func (f *fakeAdmin) Pending(_ context.Context, limit int) ([]*model.JoinRequest, error) {
	f.limit = limit
	return f.items, nil
}

func (f *fakeAdmin) Completed(_ context.Context, limit int) ([]*model.JoinRequest, error) {
	f.limit = limit
	return f.items, nil
}

func (f *fakeAdmin) StalePending(context.Context) ([]*model.JoinRequest, error) {
	return f.items, nil
}

func (f *fakeAdmin) ResolveStale(context.Context) (int, error) {
	return f.marked, nil
}

type fakeGuard bool

func (g fakeGuard) CanUseAdminCommands(context.Context, int64, bool, int64) bool {
	return bool(g)
}

type fakeReporter struct {
	where []string
}

func (r *fakeReporter) Alert(_ context.Context, where string, _ error) {
	r.where = append(r.where, where)
}

func newTestHandlers(flow *fakeFlow, admin *fakeAdmin, guard bool) (*Handlers, *fakeReporter) {
	reporter := &fakeReporter{}
	h := NewHandlers(flow, admin, fakeGuard(guard), reporter, messages.MustLoad("de"), time.UTC, zap.NewNop())
	return h, reporter
}

func privateText(userID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: userID, FirstName: "Alice"},
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

func groupText(chatID, userID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: chatID, Type: models.ChatTypeSupergroup},
			Text: text,
		},
	}
}

func awaitingRequest(t *testing.T, userID int64, name string) *model.JoinRequest {
	t.Helper()
	jr := model.NewJoinRequest(model.JoinRequestInput{
		RequestID:    "req",
		UserID:       userID,
		TargetChatID: -1001,
		DisplayName:  name,
		Timestamp:    time.Date(2025, 3, 15, 13, 30, 0, 0, time.UTC),
	}, model.DefaultValidationRules())
	require.NoError(t, jr.StartCollection())
	require.NoError(t, jr.SubmitReason("eins zwei drei vier fünf sechs sieben acht neun zehn"))
	return jr
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
	}{
		{text: "/pending", name: "pending"},
		{text: "/pending 5", name: "pending", args: []string{"5"}},
		{text: "/Cleanup@GateBot confirm", name: "cleanup", args: []string{"confirm"}},
		{text: "hallo", name: ""},
		{text: "", name: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := parseCommand(tt.text)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, len(tt.args), len(args))
			for i := range tt.args {
				assert.Equal(t, tt.args[i], args[i])
			}
		})
	}
}

func TestListLimit(t *testing.T) {
	assert.Equal(t, 0, listLimit("/pending"))
	assert.Equal(t, 7, listLimit("/pending 7"))
	assert.Equal(t, 0, listLimit("/pending viele"))
}

func TestFormatRequestList(t *testing.T) {
	now := time.Date(2025, 3, 15, 16, 30, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		text := FormatRequestList("Offen", nil, "Keine Anfragen gefunden.", messages.MustLoad("de"), time.UTC, now)
		assert.Equal(t, "<b>Offen</b> (0)\n\nKeine Anfragen gefunden.", text)
	})

	t.Run("escapes user input", func(t *testing.T) {
		jr := awaitingRequest(t, 42, "<script>")
		text := FormatRequestList("Offen", []*model.JoinRequest{jr}, "", messages.MustLoad("de"), time.UTC, now)

		assert.Contains(t, text, "👀 <b>&lt;script&gt;</b>")
		assert.Contains(t, text, "<code>42</code>")
		assert.Contains(t, text, "15.03.2025 13:30 (vor 3 Stunden)")
		assert.NotContains(t, text, "<script>")
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a \n b", 10))
	assert.Equal(t, "äöü…", preview("äöüß", 3))
}

func TestHandleTextMessage(t *testing.T) {
	b, api := telegramtest.NewBot(t)

	t.Run("replies in private chat", func(t *testing.T) {
		flow := &fakeFlow{reply: "Danke"}
		h, _ := newTestHandlers(flow, &fakeAdmin{}, false)

		h.HandleTextMessage(context.Background(), b, privateText(100, "meine Begründung"))

		assert.Equal(t, "meine Begründung", flow.gotText)
		assert.Contains(t, api.Texts(), "Danke")
	})

	t.Run("ignores groups", func(t *testing.T) {
		flow := &fakeFlow{reply: "nie"}
		h, _ := newTestHandlers(flow, &fakeAdmin{}, false)

		h.HandleTextMessage(context.Background(), b, groupText(-5, 100, "hi"))
		assert.Empty(t, flow.gotText)
	})

	t.Run("storage error", func(t *testing.T) {
		flow := &fakeFlow{replyErr: errors.New("db down")}
		h, _ := newTestHandlers(flow, &fakeAdmin{}, false)

		h.HandleTextMessage(context.Background(), b, privateText(101, "text"))
		assert.Contains(t, api.Texts(), messages.MustLoad("de").Text(messages.ErrorGeneric))
	})
}

func TestHandleChatJoinRequest(t *testing.T) {
	b, _ := telegramtest.NewBot(t)
	update := &models.Update{
		ChatJoinRequest: &models.ChatJoinRequest{
			Chat:       models.Chat{ID: -1001, Type: models.ChatTypeSupergroup},
			From:       models.User{ID: 100, FirstName: "Alice", LastName: "Smith", Username: "alice"},
			UserChatID: 100,
		},
	}

	t.Run("passes requester", func(t *testing.T) {
		flow := &fakeFlow{}
		h, reporter := newTestHandlers(flow, &fakeAdmin{}, false)

		h.HandleChatJoinRequest(context.Background(), b, update)

		assert.Equal(t, int64(-1001), flow.gotChatID)
		assert.Equal(t, "Alice Smith", flow.gotUser.DisplayName())
		assert.Equal(t, int64(100), flow.gotUser.ChatID)
		assert.Empty(t, reporter.where)
	})

	t.Run("mirrors failures", func(t *testing.T) {
		h, reporter := newTestHandlers(&fakeFlow{initErr: errors.New("store down")}, &fakeAdmin{}, false)

		h.HandleChatJoinRequest(context.Background(), b, update)
		assert.Equal(t, []string{"join request"}, reporter.where)
	})
}

func TestAdminCommands(t *testing.T) {
	msgs := messages.MustLoad("de")

	t.Run("rejected outside moderation chat", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		admin := &fakeAdmin{}
		h, _ := newTestHandlers(&fakeFlow{}, admin, false)

		h.HandlePending(context.Background(), b, groupText(-1001, 7, "/pending"))

		assert.Equal(t, []string{msgs.Text(messages.PrivateOnlyHint)}, api.Texts())
		assert.Zero(t, admin.limit)
	})

	t.Run("pending clamps limit", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		admin := &fakeAdmin{items: []*model.JoinRequest{awaitingRequest(t, 1, "Bob")}}
		h, _ := newTestHandlers(&fakeFlow{}, admin, true)

		h.HandlePending(context.Background(), b, groupText(-2002, 7, "/pending 50"))

		assert.Equal(t, service.MaxListLimit, admin.limit)
		texts := api.Texts()
		require.Len(t, texts, 2)
		assert.Equal(t, msgs.Text(messages.FetchingPending, service.MaxListLimit), texts[0])
		assert.True(t, strings.HasPrefix(texts[1], "<b>Offene Beitrittsanfragen</b> (1)"))
		assert.Equal(t, "HTML", api.Calls("sendMessage")[1].Params["parse_mode"])
	})

	t.Run("cleanup preview", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		admin := &fakeAdmin{items: []*model.JoinRequest{awaitingRequest(t, 1, "Bob"), awaitingRequest(t, 2, "Eve")}}
		h, _ := newTestHandlers(&fakeFlow{}, admin, true)

		h.HandleCleanup(context.Background(), b, privateText(7, "/cleanup"))

		texts := api.Texts()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], msgs.Text(messages.CleanupPrompt, 2))
	})

	t.Run("cleanup confirm", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		h, _ := newTestHandlers(&fakeFlow{}, &fakeAdmin{marked: 3}, true)

		h.HandleCleanup(context.Background(), b, privateText(7, "/cleanup confirm"))
		assert.Equal(t, []string{msgs.Text(messages.CleanupMarked, 3)}, api.Texts())
	})

	t.Run("cleanup confirm nothing", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		h, _ := newTestHandlers(&fakeFlow{}, &fakeAdmin{}, true)

		h.HandleCleanup(context.Background(), b, privateText(7, "/cleanup confirm"))
		assert.Equal(t, []string{msgs.Text(messages.CleanupNothing)}, api.Texts())
	})

	t.Run("dashboard keyboard", func(t *testing.T) {
		b, api := telegramtest.NewBot(t)
		h, _ := newTestHandlers(&fakeFlow{}, &fakeAdmin{}, true)

		h.HandleAdmin(context.Background(), b, privateText(7, "/admin"))

		calls := api.Calls("sendMessage")
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0].Params["reply_markup"], callbacks.AdminPending)
		assert.Contains(t, calls[0].Params["reply_markup"], callbacks.AdminCompleted)
	})
}
