package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"chatbox/pkg/version"
	"chatbox/pkg/wire"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	maxFrameBytes    = 1 << 20
)

// Keepalive timing. pingInterval must stay below pongWait.
var (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// WebSocketDialer connects to a chat server over gorilla/websocket.
type WebSocketDialer struct {
	Host string
	Port int

	dialer *websocket.Dialer
}

// NewWebSocketDialer returns a dialer for ws://host:port.
func NewWebSocketDialer(host string, port int) *WebSocketDialer {
	return &WebSocketDialer{
		Host: host,
		Port: port,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Dial opens one connection for userID. There is no retry.
func (d *WebSocketDialer) Dial(ctx context.Context, userID string) (Channel, error) {
	target := ChatURL(d.Host, d.Port, userID)
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, resp, err := d.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	slog.Info("channel_open", "url", target)
	return NewWebSocketChannel(conn), nil
}

// WebSocketChannel adapts a gorilla connection to Channel.
// gorilla allows one concurrent writer, so writes are serialized.
type WebSocketChannel struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// deadlineMu keeps a pong from pushing the read deadline out again
	// after a cancelled Receive has pulled it in.
	deadlineMu  sync.Mutex
	readStopped bool
	pongWait    time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// NewWebSocketChannel wraps an established connection and starts pinging the
// server. Each pong extends the read deadline by pongWait.
func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	c := &WebSocketChannel{conn: conn, closed: make(chan struct{}), pongWait: pongWait}
	conn.SetReadLimit(maxFrameBytes)
	conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})
	go c.pingLoop(pingInterval)
	return c
}

func (c *WebSocketChannel) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				slog.Debug("channel_ping_failed", "error", err)
				return
			}
		}
	}
}

func (c *WebSocketChannel) extendReadDeadline() {
	c.deadlineMu.Lock()
	defer c.deadlineMu.Unlock()
	if !c.readStopped {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	}
}

func (c *WebSocketChannel) stopRead() {
	c.deadlineMu.Lock()
	defer c.deadlineMu.Unlock()
	c.readStopped = true
	_ = c.conn.SetReadDeadline(time.Now())
}

// Send writes one text frame.
func (c *WebSocketChannel) Send(ctx context.Context, frame wire.Outbound) error {
	if c.isClosed() {
		return ErrClosed
	}
	data, err := wire.EncodeOutbound(frame)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return c.mapErr(fmt.Errorf("write frame: %w", err))
	}
	return nil
}

// Receive blocks until the next inbound frame, ctx is done, or the connection ends.
// A silent server is detected once no frame or pong arrives within pongWait.
// A Receive cancelled through ctx leaves the connection unreadable.
func (c *WebSocketChannel) Receive(ctx context.Context) (wire.Inbound, error) {
	if c.isClosed() {
		return wire.Inbound{}, ErrClosed
	}

	c.deadlineMu.Lock()
	c.readStopped = false
	c.deadlineMu.Unlock()
	c.extendReadDeadline()

	stop := context.AfterFunc(ctx, c.stopRead)
	defer stop()

	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return wire.Inbound{}, ctxErr
			}
			return wire.Inbound{}, c.mapErr(fmt.Errorf("read frame: %w", err))
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		frame, err := wire.DecodeInbound(payload)
		if err != nil {
			return wire.Inbound{}, malformed(err)
		}
		return frame, nil
	}
}

// Close sends a close frame and releases the connection.
func (c *WebSocketChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *WebSocketChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *WebSocketChannel) mapErr(err error) error {
	if c.isClosed() || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return fmt.Errorf("%w: %v", ErrClosed, closeErr)
	}
	return err
}

var (
	_ Channel = (*WebSocketChannel)(nil)
	_ Dialer  = (*WebSocketDialer)(nil)
)
