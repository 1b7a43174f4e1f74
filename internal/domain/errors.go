package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("watch party not found or inactive")
	ErrUserNotFound      = errors.New("user not found")
	ErrForbidden         = errors.New("only the creator can close the watch party")
	ErrRoomCodeTaken     = errors.New("room code already taken")
	ErrRoomCodeExhausted = errors.New("failed to generate room code")
)
