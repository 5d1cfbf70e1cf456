package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

type RoomSvc interface {
	Sync(ctx context.Context, id string, deliver func(room *domain.Room)) error
	ApplySnapshot(ctx context.Context, id string, snapshot domain.Room, relay func(stored *domain.Room)) error
	AdvanceStatus(ctx context.Context, id string, to domain.Status, relay func()) (*domain.Room, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
}

type Options struct {
	HandshakeTimeout time.Duration
	PingEvery        time.Duration
	WriteTimeout     time.Duration
	ReadLimit        int64
	SendBuffer       int
	FrameRate        float64
	FrameBurst       int
	AllowedOrigins   []string
}

func (o *Options) setDefaults() {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.PingEvery <= 0 {
		o.PingEvery = 15 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.FrameRate <= 0 {
		o.FrameRate = 50
	}
	if o.FrameBurst <= 0 {
		o.FrameBurst = 100
	}
}

// Server is the relay: it subscribes each socket to its room, relays frames
// to peers and persists room_state snapshots.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	rooms    RoomSvc
	opts     Options
}

func NewServer(hub *Hub, rooms RoomSvc, opts Options) *Server {
	opts.setDefaults()
	return &Server{
		hub:   hub,
		rooms: rooms,
		opts:  opts,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.HandshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      originChecker(opts.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWS serves GET /ws/room/{roomId}. The room id is the last path segment.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		roomID = path.Base(r.URL.Path)
	}
	roomID = domain.NormalizeRoomID(roomID)
	if roomID == "" || roomID == "/" || roomID == "." {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		slog.Warn("ws upgrade failed", "room", roomID, "err", err)
		return
	}

	c := newWsConn(conn, roomID, s.opts.SendBuffer, s.opts.WriteTimeout)
	if err := s.hub.Add(c); err != nil {
		slog.Debug("ws rejected", "room", roomID, "err", err)
		_ = c.Close()
		return
	}
	slog.Info("ws connected", "room", roomID, "conn", c.id, "peers", s.hub.Count(roomID))

	go c.writePump(s.opts.PingEvery)

	ctx := context.WithoutCancel(r.Context())
	err = s.rooms.Sync(ctx, roomID, func(room *domain.Room) {
		c.sendMessage(Message{Type: TypeRoomState, Payload: room})
	})
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		slog.Warn("ws initial state failed", "room", roomID, "conn", c.id, "err", err)
	}

	s.readLoop(ctx, c)

	torn := s.hub.Remove(c)
	_ = c.Close()
	slog.Info("ws disconnected", "room", roomID, "conn", c.id, "room_closed", torn)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	limiter := rate.NewLimiter(rate.Limit(s.opts.FrameRate), s.opts.FrameBurst)

	c.conn.SetReadLimit(s.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				slog.Debug("ws read failed", "room", c.roomID, "conn", c.id, "err", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))

		if !limiter.Allow() {
			slog.Warn("ws frame dropped, rate limit", "room", c.roomID, "conn", c.id)
			continue
		}
		s.handleFrame(ctx, c, data)
	}
}

func (s *Server) handleFrame(ctx context.Context, c *wsConn, data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		slog.Warn("ws malformed frame dropped", "room", c.roomID, "conn", c.id, "err", err)
		return
	}

	if _, err := s.rooms.GetRoom(ctx, c.roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.sendMessage(errorMessage(errRoomNotFound))
			return
		}
		slog.Error("ws room lookup failed", "room", c.roomID, "err", err)
		return
	}

	switch f := frame.(type) {
	case *RoomStateFrame:
		s.applyRoomState(ctx, c, f)
	case *PhaseFrame:
		_, err := s.rooms.AdvanceStatus(ctx, c.roomID, f.Status, func() {
			s.hub.Broadcast(c.roomID, relayMessage(f.Type, f.Payload), c)
		})
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrRoomNotFound):
			c.sendMessage(errorMessage(errRoomNotFound))
		case errors.Is(err, domain.ErrInvalidTransition):
			slog.Debug("ws status unchanged", "room", c.roomID, "type", f.Type, "err", err)
		default:
			slog.Error("ws advance status failed", "room", c.roomID, "type", f.Type, "err", err)
		}
	case *PassthroughFrame:
		s.hub.Broadcast(c.roomID, relayMessage(f.Type, f.Payload), c)
	}
}

// applyRoomState persists the snapshot first and only then relays the stored
// version to the other connections.
func (s *Server) applyRoomState(ctx context.Context, c *wsConn, f *RoomStateFrame) {
	snapshot, err := f.Room()
	if err != nil {
		slog.Warn("ws invalid room_state", "room", c.roomID, "conn", c.id, "err", err)
		c.sendMessage(errorMessage(errInvalidRoomState))
		return
	}

	err = s.rooms.ApplySnapshot(ctx, c.roomID, snapshot, func(stored *domain.Room) {
		s.hub.Broadcast(c.roomID, Message{Type: TypeRoomState, Payload: stored}, c)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRoomNotFound):
		c.sendMessage(errorMessage(errRoomNotFound))
	case errors.Is(err, domain.ErrInvalidInput):
		c.sendMessage(errorMessage(errInvalidRoomState))
	default:
		slog.Error("ws apply room_state failed", "room", c.roomID, "err", err)
	}
}
