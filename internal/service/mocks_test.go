package service

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type messengerMock struct {
	mock.Mock
}

func (m *messengerMock) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *messengerMock) PostCard(ctx context.Context, chatID int64, card ReviewCard) (int, error) {
	args := m.Called(ctx, chatID, card)
	return args.Int(0), args.Error(1)
}

func (m *messengerMock) EditCard(ctx context.Context, chatID int64, messageID int, card ReviewCard) error {
	args := m.Called(ctx, chatID, messageID, card)
	return args.Error(0)
}

type authorityMock struct {
	mock.Mock
}

func (m *authorityMock) GetMemberRole(ctx context.Context, chatID, userID int64) (MemberRole, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Get(0).(MemberRole), args.Error(1)
}

func (m *authorityMock) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *authorityMock) DeclineJoinRequest(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}
