package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound event names.
const (
	EventTimeSync  = "time-sync"
	EventJoinRoom  = "join-room"
	EventLeaveRoom = "leave-room"
	EventPlayVideo = "play-video"
	EventSyncVideo = "sync-video"
)

// Outbound event names.
const (
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventAck        = "ack"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

// Event is one of TimeSync, JoinRoom, LeaveRoom, PlayVideo, SyncVideo.
type Event interface {
	Name() string
}

type TimeSync struct{}

type JoinRoom struct {
	RoomCode string
}

type LeaveRoom struct {
	RoomCode string
}

type PlayVideo struct {
	RoomCode   string
	VideoID    int64
	VideoTitle *string
}

type SyncAction string

const (
	SyncPlay  SyncAction = "play"
	SyncPause SyncAction = "pause"
	SyncSeek  SyncAction = "seek"
)

type SyncVideo struct {
	RoomCode    string
	Action      SyncAction
	CurrentTime *float64
}

func (TimeSync) Name() string  { return EventTimeSync }
func (JoinRoom) Name() string  { return EventJoinRoom }
func (LeaveRoom) Name() string { return EventLeaveRoom }
func (PlayVideo) Name() string { return EventPlayVideo }
func (SyncVideo) Name() string { return EventSyncVideo }

// Inbound is a validated client frame.
type Inbound struct {
	Event Event
	Ack   *int64
}

// ParseFrame decodes and validates a client frame. Unknown events, unknown
// fields, mistyped fields and missing required fields are all errors.
func ParseFrame(raw []byte) (Inbound, error) {
	var f Frame
	if err := decodeStrict(raw, &f); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	ev, err := parseEvent(f.Event, f.Data)
	if err != nil {
		return Inbound{}, err
	}
	return Inbound{Event: ev, Ack: f.Ack}, nil
}

func parseEvent(name string, data json.RawMessage) (Event, error) {
	switch name {
	case EventTimeSync:
		// payload ignored
		return TimeSync{}, nil

	case EventJoinRoom:
		code, err := parseRoomRef(data)
		if err != nil {
			return nil, err
		}
		return JoinRoom{RoomCode: code}, nil

	case EventLeaveRoom:
		code, err := parseRoomRef(data)
		if err != nil {
			return nil, err
		}
		return LeaveRoom{RoomCode: code}, nil

	case EventPlayVideo:
		var p struct {
			RoomCode   *string `json:"roomCode"`
			VideoID    *int64  `json:"videoId"`
			VideoTitle *string `json:"videoTitle"`
		}
		if err := decodeStrict(data, &p); err != nil {
			return nil, invalid(name, err.Error())
		}
		if p.RoomCode == nil || strings.TrimSpace(*p.RoomCode) == "" {
			return nil, invalid(name, "roomCode is required")
		}
		if p.VideoID == nil {
			return nil, invalid(name, "videoId is required")
		}
		return PlayVideo{RoomCode: *p.RoomCode, VideoID: *p.VideoID, VideoTitle: p.VideoTitle}, nil

	case EventSyncVideo:
		var p struct {
			RoomCode    *string  `json:"roomCode"`
			Action      *string  `json:"action"`
			CurrentTime *float64 `json:"currentTime"`
		}
		if err := decodeStrict(data, &p); err != nil {
			return nil, invalid(name, err.Error())
		}
		if p.RoomCode == nil || strings.TrimSpace(*p.RoomCode) == "" {
			return nil, invalid(name, "roomCode is required")
		}
		if p.Action == nil {
			return nil, invalid(name, "action is required")
		}
		action := SyncAction(*p.Action)
		switch action {
		case SyncPlay, SyncPause, SyncSeek:
		default:
			return nil, invalid(name, fmt.Sprintf("unsupported action %q", *p.Action))
		}
		return SyncVideo{RoomCode: *p.RoomCode, Action: action, CurrentTime: p.CurrentTime}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

// parseRoomRef accepts either "R" or {"roomCode":"R"}.
func parseRoomRef(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", fmt.Errorf("%w: room code is required", ErrInvalidPayload)
	}

	var code string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &code); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	} else {
		var p struct {
			RoomCode string `json:"roomCode"`
		}
		if err := decodeStrict(data, &p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		code = p.RoomCode
	}

	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: room code is required", ErrInvalidPayload)
	}
	return code, nil
}

func decodeStrict(data []byte, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

func invalid(event, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, event, msg)
}

// Outbound payloads.

type presencePayload struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

type playVideoPayload struct {
	VideoID    int64   `json:"videoId"`
	VideoTitle *string `json:"videoTitle"`
	StartedBy  int64   `json:"startedBy"`
	ServerTime int64   `json:"serverTime"`
	StartAt    int64   `json:"startAt"`
}

type syncVideoPayload struct {
	Action      SyncAction `json:"action"`
	CurrentTime *float64   `json:"currentTime,omitempty"`
	ServerTime  int64      `json:"serverTime"`
	TriggeredBy int64      `json:"triggeredBy"`
}

func encodeFrame(event string, data any, ack *int64) ([]byte, error) {
	f := Frame{Event: event, Ack: ack}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		f.Data = b
	}
	return json.Marshal(f)
}
