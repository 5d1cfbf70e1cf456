package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsConn owns one gorilla connection. Writes go through a buffered queue
// drained by writePump, so broadcasting never blocks on a slow peer.
type wsConn struct {
	id     string
	roomID string
	conn   *websocket.Conn

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
}

func newWsConn(c *websocket.Conn, roomID string, buffer int, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		id:           uuid.NewString(),
		roomID:       roomID,
		conn:         c,
		send:         make(chan []byte, buffer),
		closed:       make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

func (c *wsConn) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *wsConn) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws encode failed", "room", c.roomID, "conn", c.id, "type", msg.Type, "err", err)
		return
	}
	if err := c.Send(data); err != nil {
		slog.Warn("ws send failed", "room", c.roomID, "conn", c.id, "type", msg.Type, "err", err)
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) RoomID() string { return c.roomID }

// writePump is the only writer of data frames on the connection.
func (c *wsConn) writePump(pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("ws write failed", "room", c.roomID, "conn", c.id, "err", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				slog.Debug("ws ping failed", "room", c.roomID, "conn", c.id, "err", err)
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
