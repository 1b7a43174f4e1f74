package ws

import (
	"sort"
	"sync"
)

// Hub groups live connections by room code. It knows nothing about
// persisted membership: a subscription lives only as long as the connection.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // roomCode -> set of session ids
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]struct{})}
}

// Subscribe reports whether connID was newly added to room.
func (h *Hub) Subscribe(room, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[room]
	if !ok {
		rs = make(map[string]struct{})
		h.rooms[room] = rs
	}
	if _, dup := rs[connID]; dup {
		return false
	}
	rs[connID] = struct{}{}
	return true
}

// Unsubscribe reports whether connID was subscribed. Empty rooms are dropped.
func (h *Hub) Unsubscribe(room, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[room]
	if !ok {
		return false
	}
	if _, ok := rs[connID]; !ok {
		return false
	}
	delete(rs, connID)
	if len(rs) == 0 {
		delete(h.rooms, room)
	}
	return true
}

// Snapshot returns a copy of the room's subscribers, safe to iterate
// while other goroutines subscribe and unsubscribe.
func (h *Hub) Snapshot(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs := h.rooms[room]
	out := make([]string, 0, len(rs))
	for id := range rs {
		out = append(out, id)
	}
	return out
}

func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.rooms))
	for room := range h.rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

type HubStats struct {
	Rooms         int            `json:"rooms"`
	Subscriptions int            `json:"subscriptions"`
	PerRoom       map[string]int `json:"perRoom"`
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := HubStats{Rooms: len(h.rooms), PerRoom: make(map[string]int, len(h.rooms))}
	for room, rs := range h.rooms {
		st.PerRoom[room] = len(rs)
		st.Subscriptions += len(rs)
	}
	return st
}
