package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/events"

	"github.com/jonboulle/clockwork"
)

type RoomService struct {
	roomRepo   RoomRepository
	memberRepo MemberRepository
	userRepo   UserRepository

	publisher events.Publisher
	clock     clockwork.Clock
	newCode   CodeGenerator
}

type Option func(*RoomService)

func WithPublisher(p events.Publisher) Option {
	return func(s *RoomService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(s *RoomService) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithCodeGenerator(g CodeGenerator) Option {
	return func(s *RoomService) {
		if g != nil {
			s.newCode = g
		}
	}
}

func NewRoomService(roomRepo RoomRepository, memberRepo MemberRepository, userRepo UserRepository, opts ...Option) *RoomService {
	s := &RoomService{
		roomRepo:   roomRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		publisher:  events.Nop{},
		clock:      clockwork.NewRealClock(),
		newCode:    RandomRoomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom creates an active room with a fresh code and makes the creator its first member.
func (s *RoomService) CreateRoom(ctx context.Context, creatorID domain.UserID) (*domain.RoomDetail, error) {
	creator, err := s.userRepo.Get(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("userRepo.Get: %w", err)
	}

	for attempt := 1; attempt <= maxRoomCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}

		exists, err := s.roomRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("roomRepo.CodeExists: %w", err)
		}
		if exists {
			slog.Debug("room code collision", "attempt", attempt)
			continue
		}

		room := &domain.Room{
			RoomCode:  code,
			CreatorID: creatorID,
			Creator:   *creator,
		}
		if err := s.roomRepo.CreateWithCreator(ctx, room); err != nil {
			// кто-то занял код между проверкой и вставкой
			if errors.Is(err, domain.ErrRoomCodeTaken) {
				slog.Debug("room code taken concurrently", "attempt", attempt)
				continue
			}
			return nil, fmt.Errorf("roomRepo.CreateWithCreator: %w", err)
		}

		s.publish(ctx, events.KindRoomCreated, room, creatorID)
		return s.detail(ctx, room)
	}

	return nil, domain.ErrRoomCodeExhausted
}

// GetActiveRoom treats inactive rooms as missing.
func (s *RoomService) GetActiveRoom(ctx context.Context, code string) (*domain.RoomDetail, error) {
	room, err := s.activeRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, room)
}

// JoinRoom is idempotent: an existing member gets the room back unchanged.
func (s *RoomService) JoinRoom(ctx context.Context, code string, userID domain.UserID) (*domain.RoomDetail, error) {
	room, err := s.activeRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	exists, err := s.memberRepo.Exists(ctx, room.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("memberRepo.Exists: %w", err)
	}
	if exists {
		return s.detail(ctx, room)
	}

	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("userRepo.Get: %w", err)
	}

	inserted, err := s.memberRepo.Add(ctx, room.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("memberRepo.Add: %w", err)
	}
	if inserted {
		s.publish(ctx, events.KindRoomJoined, room, userID)
	}

	return s.detail(ctx, room)
}

// CloseRoom deactivates the room. Only the creator may close it; closing an
// already closed room succeeds.
func (s *RoomService) CloseRoom(ctx context.Context, code string, requesterID domain.UserID) error {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.CreatorID != requesterID {
		return domain.ErrForbidden
	}

	if err := s.roomRepo.SetActive(ctx, room.ID, false); err != nil {
		return fmt.Errorf("roomRepo.SetActive: %w", err)
	}
	room.IsActive = false

	s.publish(ctx, events.KindRoomClosed, room, requesterID)
	return nil
}

func (s *RoomService) ListMembers(ctx context.Context, roomID string) ([]domain.Member, error) {
	return s.memberRepo.ListByRoom(ctx, roomID)
}

// SetCurrentVideo records the video last started in an active room.
func (s *RoomService) SetCurrentVideo(ctx context.Context, code string, videoID int64) error {
	return s.roomRepo.SetCurrentVideo(ctx, code, videoID)
}

func (s *RoomService) activeRoom(ctx context.Context, code string) (*domain.Room, error) {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) detail(ctx context.Context, room *domain.Room) (*domain.RoomDetail, error) {
	members, err := s.memberRepo.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("memberRepo.ListByRoom: %w", err)
	}
	return &domain.RoomDetail{Room: *room, Members: members}, nil
}

func (s *RoomService) publish(ctx context.Context, kind events.Kind, room *domain.Room, userID domain.UserID) {
	ev := events.RoomEvent{
		Kind:       kind,
		RoomID:     room.ID,
		RoomCode:   room.RoomCode,
		UserID:     userID,
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("publish room event", "kind", kind, "room_code", room.RoomCode, slog.Any("err", err))
	}
}
