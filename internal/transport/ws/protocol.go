package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// PlaybackLead is how far in the future play-video schedules the common start.
const PlaybackLead = 5 * time.Second

// PlaybackRecorder remembers the video last started in a room.
type PlaybackRecorder interface {
	SetCurrentVideo(ctx context.Context, code string, videoID int64) error
}

type Protocol struct {
	registry *Registry
	hub      *Hub
	clock    clockwork.Clock
	recorder PlaybackRecorder
}

// NewProtocol wires the event handlers; recorder may be nil.
func NewProtocol(registry *Registry, hub *Hub, clock clockwork.Clock, recorder PlaybackRecorder) *Protocol {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Protocol{registry: registry, hub: hub, clock: clock, recorder: recorder}
}

// HandleEvent runs one validated event from s. Nothing is ever sent back as an error.
func (p *Protocol) HandleEvent(ctx context.Context, s *Session, in Inbound) {
	switch ev := in.Event.(type) {
	case TimeSync:
		p.timeSync(s, in.Ack)
	case JoinRoom:
		p.joinRoom(s, ev)
	case LeaveRoom:
		p.leaveRoom(s, ev)
	case PlayVideo:
		p.playVideo(ctx, s, ev)
	case SyncVideo:
		p.syncVideo(s, ev)
	default:
		slog.Debug("ws unhandled event", "session", s.ID(), "event", in.Event.Name())
	}
}

// HandleDisconnect tells every room s was in that its user left and drops the subscriptions.
func (p *Protocol) HandleDisconnect(s *Session) {
	for _, room := range s.Rooms() {
		p.hub.Unsubscribe(room, s.ID())
		s.removeRoom(room)
		p.emit(room, EventUserLeft, p.presence(s), s.ID())
	}
}

func (p *Protocol) timeSync(s *Session, ack *int64) {
	if ack == nil {
		return
	}
	frame, err := encodeFrame(EventAck, p.clock.Now().UnixMilli(), ack)
	if err != nil {
		slog.Error("ws encode ack", slog.Any("err", err))
		return
	}
	if !s.Enqueue(frame) {
		slog.Debug("ws ack dropped", "session", s.ID())
	}
}

func (p *Protocol) joinRoom(s *Session, ev JoinRoom) {
	p.hub.Subscribe(ev.RoomCode, s.ID())
	s.addRoom(ev.RoomCode)
	p.emit(ev.RoomCode, EventUserJoined, p.presence(s), s.ID())

	slog.Info("ws user joined room", "user_id", s.Principal().UserID, "room", ev.RoomCode)
}

func (p *Protocol) leaveRoom(s *Session, ev LeaveRoom) {
	p.hub.Unsubscribe(ev.RoomCode, s.ID())
	s.removeRoom(ev.RoomCode)
	p.emit(ev.RoomCode, EventUserLeft, p.presence(s), s.ID())

	slog.Info("ws user left room", "user_id", s.Principal().UserID, "room", ev.RoomCode)
}

func (p *Protocol) playVideo(ctx context.Context, s *Session, ev PlayVideo) {
	serverTime := p.clock.Now().UnixMilli()
	startAt := serverTime + PlaybackLead.Milliseconds()

	// отправителю тоже: его плеер стартует по тому же якорю
	p.emit(ev.RoomCode, EventPlayVideo, playVideoPayload{
		VideoID:    ev.VideoID,
		VideoTitle: ev.VideoTitle,
		StartedBy:  int64(s.Principal().UserID),
		ServerTime: serverTime,
		StartAt:    startAt,
	}, "")

	slog.Info("ws play video",
		"user_id", s.Principal().UserID,
		"room", ev.RoomCode,
		"video_id", ev.VideoID,
		"start_at", startAt,
	)

	if p.recorder != nil {
		if err := p.recorder.SetCurrentVideo(ctx, ev.RoomCode, ev.VideoID); err != nil {
			slog.Debug("ws record current video", "room", ev.RoomCode, slog.Any("err", err))
		}
	}
}

func (p *Protocol) syncVideo(s *Session, ev SyncVideo) {
	p.emit(ev.RoomCode, EventSyncVideo, syncVideoPayload{
		Action:      ev.Action,
		CurrentTime: ev.CurrentTime,
		ServerTime:  p.clock.Now().UnixMilli(),
		TriggeredBy: int64(s.Principal().UserID),
	}, s.ID())
}

func (p *Protocol) presence(s *Session) presencePayload {
	pr := s.Principal()
	return presencePayload{UserID: int64(pr.UserID), Email: pr.Email}
}

// emit fans a frame out to the room's current subscribers, skipping exclude.
// A failed delivery only loses that one recipient's copy.
func (p *Protocol) emit(room, event string, data any, exclude string) {
	frame, err := encodeFrame(event, data, nil)
	if err != nil {
		slog.Error("ws encode frame", "event", event, slog.Any("err", err))
		return
	}

	for _, id := range p.hub.Snapshot(room) {
		if id == exclude {
			continue
		}
		target, ok := p.registry.Get(id)
		if !ok {
			continue
		}
		if !target.Enqueue(frame) {
			slog.Debug("ws delivery dropped", "event", event, "room", room, "session", id)
		}
	}
}
