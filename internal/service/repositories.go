package service

import (
	"context"

	"github.com/cwrk-planet/watch-party/internal/domain"
)

// Implemented by internal/postgres.

type RoomRepository interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateWithCreator(ctx context.Context, room *domain.Room) error
	GetByCode(ctx context.Context, code string) (*domain.Room, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetCurrentVideo(ctx context.Context, code string, videoID int64) error
}

type MemberRepository interface {
	Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error)
	Add(ctx context.Context, roomID string, userID domain.UserID) (bool, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.Member, error)
}

type UserRepository interface {
	Get(ctx context.Context, id domain.UserID) (*domain.UserSummary, error)
}
