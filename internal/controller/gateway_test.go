package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	sent    []*bot.SendMessageParams
	edited  []*bot.EditMessageTextParams
	member  models.ChatMemberType
	sendErr error
	editErr error
	joinErr error
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{ID: 321}, nil
}

func (f *fakeAPI) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.edited = append(f.edited, params)
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeAPI) GetChatMember(context.Context, *bot.GetChatMemberParams) (*models.ChatMember, error) {
	return &models.ChatMember{Type: f.member}, nil
}

func (f *fakeAPI) ApproveChatJoinRequest(context.Context, *bot.ApproveChatJoinRequestParams) (bool, error) {
	return f.joinErr == nil, f.joinErr
}

func (f *fakeAPI) DeclineChatJoinRequest(context.Context, *bot.DeclineChatJoinRequestParams) (bool, error) {
	return f.joinErr == nil, f.joinErr
}

func TestGateway_PostCard(t *testing.T) {
	api := &fakeAPI{}
	g := NewGateway(api, zap.NewNop())

	id, err := g.PostCard(context.Background(), -100, service.ReviewCard{
		Text:    "card",
		Actions: []service.CardAction{{Label: "ok", Data: "approve:x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 321, id)

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(-100), api.sent[0].ChatID)
	assert.NotNil(t, api.sent[0].ReplyMarkup)
}

func TestGateway_EditCardWithoutActionsDropsKeyboard(t *testing.T) {
	api := &fakeAPI{}
	g := NewGateway(api, zap.NewNop())

	require.NoError(t, g.EditCard(context.Background(), -100, 9, service.ReviewCard{Text: "done"}))
	require.Len(t, api.edited, 1)
	assert.Nil(t, api.edited[0].ReplyMarkup)
	assert.Equal(t, 9, api.edited[0].MessageID)
}

func TestGateway_EditCardNotModified(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("Bad Request: message is not modified")}
	g := NewGateway(api, zap.NewNop())

	assert.NoError(t, g.EditCard(context.Background(), -100, 9, service.ReviewCard{Text: "same"}))
}

func TestGateway_MigrateError(t *testing.T) {
	api := &fakeAPI{sendErr: &bot.MigrateError{Message: "group chat was upgraded", MigrateToChatID: -100777}}
	g := NewGateway(api, zap.NewNop())

	_, err := g.PostCard(context.Background(), -55, service.ReviewCard{Text: "card"})
	require.Error(t, err)

	var migrated *service.ChatMigratedError
	require.ErrorAs(t, err, &migrated)
	assert.Equal(t, int64(-55), migrated.OldChatID)
	assert.Equal(t, int64(-100777), migrated.NewChatID)
}

func TestGateway_GetMemberRole(t *testing.T) {
	tests := []struct {
		in   models.ChatMemberType
		want service.MemberRole
	}{
		{in: models.ChatMemberTypeOwner, want: service.RoleOwner},
		{in: models.ChatMemberTypeAdministrator, want: service.RoleAdministrator},
		{in: models.ChatMemberTypeMember, want: service.RoleMember},
		{in: models.ChatMemberTypeRestricted, want: service.RoleRestricted},
		{in: models.ChatMemberTypeLeft, want: service.RoleLeft},
		{in: models.ChatMemberTypeBanned, want: service.RoleBanned},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			g := NewGateway(&fakeAPI{member: tt.in}, zap.NewNop())
			role, err := g.GetMemberRole(context.Background(), -1, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestGateway_JoinRequestErrorKeepsMessage(t *testing.T) {
	api := &fakeAPI{joinErr: errors.New("Bad Request: USER_ALREADY_PARTICIPANT")}
	g := NewGateway(api, zap.NewNop())

	err := g.ApproveJoinRequest(context.Background(), -1, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_ALREADY_PARTICIPANT")
}
