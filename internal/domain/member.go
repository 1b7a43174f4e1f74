package domain

import "time"

type Member struct {
	ID       int64     `db:"id"`
	RoomID   string    `db:"room_id"`
	UserID   UserID    `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`

	User UserSummary
}
