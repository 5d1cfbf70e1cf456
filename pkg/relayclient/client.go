// Package relayclient is a small client for the room relay channel. It is used
// by integration tests and tooling that need to act as a room participant.
package relayclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionTimeout = errors.New("relay: connection timeout")
	ErrClosed            = errors.New("relay: client closed")
)

const (
	DefaultDialTimeout = 5 * time.Second
	DefaultRetryDelay  = 3 * time.Second
)

type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type options struct {
	dialTimeout time.Duration
	retryDelay  time.Duration
	header      http.Header
}

type Option func(*options)

func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

func buildOptions(opts []Option) options {
	o := options{dialTimeout: DefaultDialTimeout, retryDelay: DefaultRetryDelay}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

// Dial opens a relay connection. The handshake must finish within the dial
// timeout, otherwise ErrConnectionTimeout is returned.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	o := buildOptions(opts)

	dctx, cancel := context.WithTimeout(ctx, o.dialTimeout)
	defer cancel()

	d := websocket.Dialer{HandshakeTimeout: o.dialTimeout}
	conn, resp, err := d.DialContext(dctx, url, o.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) || errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrConnectionTimeout, url, o.dialTimeout)
		}
		return nil, fmt.Errorf("relay dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Send writes one {type, payload} frame.
func (c *Client) Send(typ string, payload any) error {
	msg := struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: typ, Payload: payload}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(msg)
}

// SendRaw writes data as a single text frame, valid JSON or not.
func (c *Client) SendRaw(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks for the next frame. A ctx deadline becomes the read deadline;
// after a timeout the connection is no longer usable.
func (c *Client) Receive(ctx context.Context) (Frame, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = c.conn.SetReadDeadline(deadline)

	var f Frame
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if isTimeout(err) {
			return Frame{}, context.DeadlineExceeded
		}
		return Frame{}, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("relay decode frame: %w", err)
	}
	return f, nil
}

func (c *Client) Close() error {
	c.wmu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.conn.Close()
}

// Run keeps a session alive: it dials, hands the client to session and, when
// the session ends or the dial fails, waits the retry delay and starts over.
// Every reconnect is a fresh subscription. Run returns when ctx is done.
func Run(ctx context.Context, url string, session func(ctx context.Context, c *Client) error, opts ...Option) error {
	o := buildOptions(opts)

	for {
		c, err := Dial(ctx, url, opts...)
		if err == nil {
			err = session(ctx, c)
			_ = c.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("relay session ended, reconnecting", "url", url, "delay", o.retryDelay.String(), "err", err)

		t := time.NewTimer(o.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
