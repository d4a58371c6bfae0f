// internal/realtime/hub.go
//
// Room-based fan-out of game updates.
// Responsibilities:
//   - Track which subscribers joined which rooms (rooms are game ids).
//   - Broadcast one encoded frame to every subscriber of a room.
//
// Notes:
//   - Delivery is fire and forget: a subscriber whose buffer is full misses
//     the frame; nothing is retried.
//   - Each subscriber has a single FIFO buffer, so frames for one room arrive
//     in the order Broadcast was called for it.
//   - Joining or leaving never touches game state.

package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultBuffer is the number of frames queued per subscriber.
const DefaultBuffer = 32

// Message is the envelope for every server-to-client frame.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Subscriber is one connected client.
type Subscriber struct {
	ID     uuid.UUID
	send   chan []byte
	rooms  map[string]struct{} // guarded by Hub.mu
	closed bool                // guarded by Hub.mu
}

// Messages yields encoded frames until the subscriber is removed.
func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Hub maps rooms to subscribers.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscriber]struct{}
	buffer int
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{}), buffer: DefaultBuffer}
}

// Subscribe registers a new subscriber that is in no rooms yet.
func (h *Hub) Subscribe() *Subscriber {
	return &Subscriber{
		ID:    uuid.New(),
		send:  make(chan []byte, h.buffer),
		rooms: make(map[string]struct{}),
	}
}

// Join adds s to room. Joining twice is harmless.
func (h *Hub) Join(s *Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Subscriber]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.rooms[room] = struct{}{}
}

// Leave removes s from room.
func (h *Hub) Leave(s *Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(s, room)
}

func (h *Hub) leave(s *Subscriber, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(s.rooms, room)
}

// Remove drops s from every room and closes its message channel.
func (h *Hub) Remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	for room := range s.rooms {
		h.leave(s, room)
	}
	s.closed = true
	close(s.send)
}

// Subscribers reports how many subscribers are in room.
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast encodes {event, data} once and queues it for every subscriber in
// room without blocking.
func (h *Hub) Broadcast(room, event string, data any) {
	frame, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("room", room).Str("event", event).Msg("encode broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[room] {
		select {
		case s.send <- frame:
		default:
			log.Warn().Str("room", room).Str("subscriber", s.ID.String()).Msg("subscriber buffer full, frame dropped")
		}
	}
}
