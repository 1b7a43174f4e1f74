package domain

import "time"

type UserID int64

type Room struct {
	ID             string    `db:"id"`
	RoomCode       string    `db:"room_code"`
	IsActive       bool      `db:"is_active"`
	CreatorID      UserID    `db:"creator_id"`
	CurrentVideoID *int64    `db:"current_video_id"`
	CreatedAt      time.Time `db:"created_at"`

	Creator UserSummary
}

// UserSummary is a read-only projection of the users table owned by the auth service.
type UserSummary struct {
	ID          UserID
	Email       string
	DisplayName *string
}

// RoomDetail is a room together with its persisted members in join order.
type RoomDetail struct {
	Room    Room
	Members []Member
}
