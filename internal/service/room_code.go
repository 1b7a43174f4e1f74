package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	roomCodeBytes       = 4
	maxRoomCodeAttempts = 10
)

// CodeGenerator draws a candidate room code.
type CodeGenerator func() (string, error)

// RandomRoomCode returns 8 uppercase hex characters from crypto/rand.
func RandomRoomCode() (string, error) {
	b := make([]byte, roomCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
