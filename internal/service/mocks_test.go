package service

import (
	"context"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/events"

	"github.com/stretchr/testify/mock"
)

type mockRoomRepo struct{ mock.Mock }

func (m *mockRoomRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockRoomRepo) CreateWithCreator(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockRoomRepo) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Error(1)
}

func (m *mockRoomRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockRoomRepo) SetCurrentVideo(ctx context.Context, code string, videoID int64) error {
	return m.Called(ctx, code, videoID).Error(0)
}

type mockMemberRepo struct{ mock.Mock }

func (m *mockMemberRepo) Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMemberRepo) Add(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMemberRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.Member, error) {
	args := m.Called(ctx, roomID)
	members, _ := args.Get(0).([]domain.Member)
	return members, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Get(ctx context.Context, id domain.UserID) (*domain.UserSummary, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.UserSummary)
	return u, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev events.RoomEvent) error {
	return m.Called(ctx, ev).Error(0)
}
