package http

import (
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
)

type UserResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

type MemberResponse struct {
	ID       int64        `json:"id"`
	JoinedAt time.Time    `json:"joinedAt"`
	User     UserResponse `json:"user"`
}

type RoomResponse struct {
	ID             string           `json:"id"`
	RoomCode       string           `json:"roomCode"`
	IsActive       bool             `json:"isActive"`
	CreatedAt      time.Time        `json:"createdAt"`
	Creator        UserResponse     `json:"creator"`
	Members        []MemberResponse `json:"members"`
	CurrentVideoID *int64           `json:"currentVideoId"`
}

func toUserResponse(u domain.UserSummary) UserResponse {
	return UserResponse{ID: int64(u.ID), Email: u.Email, DisplayName: u.DisplayName}
}

func toRoomResponse(d *domain.RoomDetail) RoomResponse {
	resp := RoomResponse{
		ID:             d.Room.ID,
		RoomCode:       d.Room.RoomCode,
		IsActive:       d.Room.IsActive,
		CreatedAt:      d.Room.CreatedAt,
		Creator:        toUserResponse(d.Room.Creator),
		Members:        make([]MemberResponse, 0, len(d.Members)),
		CurrentVideoID: d.Room.CurrentVideoID,
	}
	for _, m := range d.Members {
		resp.Members = append(resp.Members, MemberResponse{
			ID:       m.ID,
			JoinedAt: m.JoinedAt,
			User:     toUserResponse(m.User),
		})
	}
	return resp
}
