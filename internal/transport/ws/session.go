package ws

import (
	"sort"
	"sync"

	"github.com/cwrk-planet/watch-party/internal/domain"

	"github.com/google/uuid"
)

// Session is one authenticated live connection. Outbound frames go through a
// bounded queue drained by the connection's write pump.
type Session struct {
	id        string
	principal domain.Principal

	sendMu sync.RWMutex
	send   chan []byte
	closed bool

	roomsMu sync.Mutex
	rooms   map[string]struct{}
}

func NewSession(p domain.Principal, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Session{
		id:        uuid.NewString(),
		principal: p,
		send:      make(chan []byte, queueSize),
		rooms:     make(map[string]struct{}),
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Principal() domain.Principal { return s.principal }

// Outbound is drained by the write pump; it is closed by Close.
func (s *Session) Outbound() <-chan []byte { return s.send }

// Enqueue never blocks. It reports false when the queue is full or closed.
func (s *Session) Enqueue(frame []byte) bool {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) Close() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

func (s *Session) addRoom(room string) {
	s.roomsMu.Lock()
	s.rooms[room] = struct{}{}
	s.roomsMu.Unlock()
}

func (s *Session) removeRoom(room string) {
	s.roomsMu.Lock()
	delete(s.rooms, room)
	s.roomsMu.Unlock()
}

// Rooms returns the subscribed room codes, sorted.
func (s *Session) Rooms() []string {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	out := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Registry owns the live sessions; everything else refers to them by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
