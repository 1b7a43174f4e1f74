package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	title := "Big Buck Bunny"
	pos := 12.5

	tests := []struct {
		name    string
		raw     string
		want    Event
		wantAck *int64
	}{
		{"time-sync with ack", `{"event":"time-sync","ack":3}`, TimeSync{}, ptr(int64(3))},
		{"time-sync ignores data", `{"event":"time-sync","data":{"anything":1}}`, TimeSync{}, nil},
		{"join plain string", `{"event":"join-room","data":"0A1B2C3D"}`, JoinRoom{RoomCode: "0A1B2C3D"}, nil},
		{"join object", `{"event":"join-room","data":{"roomCode":"0A1B2C3D"}}`, JoinRoom{RoomCode: "0A1B2C3D"}, nil},
		{"leave plain string", `{"event":"leave-room","data":"R"}`, LeaveRoom{RoomCode: "R"}, nil},
		{
			"play-video with title",
			`{"event":"play-video","data":{"roomCode":"R","videoId":42,"videoTitle":"Big Buck Bunny"}}`,
			PlayVideo{RoomCode: "R", VideoID: 42, VideoTitle: &title}, nil,
		},
		{"play-video without title", `{"event":"play-video","data":{"roomCode":"R","videoId":42}}`, PlayVideo{RoomCode: "R", VideoID: 42}, nil},
		{
			"sync-video seek",
			`{"event":"sync-video","data":{"roomCode":"R","action":"seek","currentTime":12.5}}`,
			SyncVideo{RoomCode: "R", Action: SyncSeek, CurrentTime: &pos}, nil,
		},
		{"sync-video pause", `{"event":"sync-video","data":{"roomCode":"R","action":"pause"}}`, SyncVideo{RoomCode: "R", Action: SyncPause}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseFrame([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Event)
			assert.Equal(t, tt.wantAck, in.Ack)
		})
	}
}

func TestParseFrame_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"not json", `hello`, ErrMalformedFrame},
		{"unknown envelope field", `{"event":"time-sync","extra":1}`, ErrMalformedFrame},
		{"unknown event", `{"event":"chat","data":"hi"}`, ErrUnknownEvent},
		{"join without data", `{"event":"join-room"}`, ErrInvalidPayload},
		{"join blank code", `{"event":"join-room","data":"  "}`, ErrInvalidPayload},
		{"join number", `{"event":"join-room","data":5}`, ErrInvalidPayload},
		{"join unknown field", `{"event":"join-room","data":{"room":"R"}}`, ErrInvalidPayload},
		{"play missing videoId", `{"event":"play-video","data":{"roomCode":"R"}}`, ErrInvalidPayload},
		{"play missing roomCode", `{"event":"play-video","data":{"videoId":1}}`, ErrInvalidPayload},
		{"play videoId as string", `{"event":"play-video","data":{"roomCode":"R","videoId":"42"}}`, ErrInvalidPayload},
		{"play unknown field", `{"event":"play-video","data":{"roomCode":"R","videoId":1,"autoplay":true}}`, ErrInvalidPayload},
		{"sync missing action", `{"event":"sync-video","data":{"roomCode":"R"}}`, ErrInvalidPayload},
		{"sync unsupported action", `{"event":"sync-video","data":{"roomCode":"R","action":"rewind"}}`, ErrInvalidPayload},
		{"sync currentTime as string", `{"event":"sync-video","data":{"roomCode":"R","action":"seek","currentTime":"1"}}`, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame([]byte(tt.raw))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	b, err := encodeFrame(EventAck, int64(1000), ptr(int64(7)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ack","data":1000,"ack":7}`, string(b))

	b, err = encodeFrame(EventPlayVideo, playVideoPayload{VideoID: 1, StartedBy: 2, ServerTime: 3, StartAt: 5003}, nil)
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(b, &f))
	assert.JSONEq(t, `{"videoId":1,"videoTitle":null,"startedBy":2,"serverTime":3,"startAt":5003}`, string(f.Data))
}

func ptr[T any](v T) *T { return &v }
