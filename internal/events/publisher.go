// Package events publishes room lifecycle notifications for other services
// (feeds, notifications). Live playback events never go through here.
package events

import (
	"context"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
)

type Kind string

const (
	KindRoomCreated Kind = "created"
	KindRoomJoined  Kind = "joined"
	KindRoomClosed  Kind = "closed"
)

type RoomEvent struct {
	Kind       Kind          `json:"kind"`
	RoomID     string        `json:"room_id"`
	RoomCode   string        `json:"room_code"`
	UserID     domain.UserID `json:"user_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev RoomEvent) error
}

// Nop drops every event; used when NATS is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, RoomEvent) error { return nil }
