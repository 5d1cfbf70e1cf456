package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

type Conn interface {
	Send(data []byte) error
	Close() error
	ID() string
	RoomID() string
}

// Hub is the connection registry: one set of connections per room id.
// Removing the last connection of a room tears the room down.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[Conn]struct{} // roomID -> set of connections
	onEmpty func(roomID string)
	closed  bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]struct{})}
}

// OnEmpty registers the teardown hook. It runs with the hub lock held, so a
// new subscriber for the same id waits until the old room is gone.
func (h *Hub) OnEmpty(fn func(roomID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEmpty = fn
}

func (h *Hub) Add(c Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	id := domain.NormalizeRoomID(c.RoomID())
	rs, ok := h.rooms[id]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[id] = rs
	}
	rs[c] = struct{}{}
	return nil
}

// Remove unsubscribes c and reports whether that emptied the room.
func (h *Hub) Remove(c Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := domain.NormalizeRoomID(c.RoomID())
	rs, ok := h.rooms[id]
	if !ok {
		return false
	}
	if _, member := rs[c]; !member {
		return false
	}
	delete(rs, c)
	if len(rs) > 0 {
		return false
	}
	delete(h.rooms, id)
	if h.onEmpty != nil {
		h.onEmpty(id)
	}
	return true
}

// Broadcast sends msg to every connection of the room except `except`.
// A failing connection is logged and skipped.
func (h *Hub) Broadcast(roomID string, msg Message, except Conn) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws broadcast marshal failed", "room", roomID, "type", msg.Type, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[domain.NormalizeRoomID(roomID)] {
		if c == except {
			continue
		}
		if err := c.Send(data); err != nil {
			lvl := slog.LevelWarn
			if errors.Is(err, ErrConnClosed) {
				lvl = slog.LevelDebug
			}
			slog.Log(context.Background(), lvl, "ws send failed", "room", roomID, "conn", c.ID(), "type", msg.Type, "err", err)
		}
	}
}

// PublishRoom pushes a room_state snapshot to every connection of the room.
func (h *Hub) PublishRoom(room *domain.Room) {
	h.Broadcast(room.ID, Message{Type: TypeRoomState, Payload: room}, nil)
}

func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[domain.NormalizeRoomID(roomID)])
}

// CloseAll closes every connection and refuses new ones. Rooms are not torn
// down one by one; the repository is dropped as a whole on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, rs := range h.rooms {
		for c := range rs {
			_ = c.Close()
		}
		delete(h.rooms, id)
	}
}
