// Package server exposes the chat assistant over WebSocket.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"chatbox/pkg/wire"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const (
	maxFrameBytes = 1 << 20

	// ErrorReply is sent when the assistant could not produce an answer.
	ErrorReply = "Sorry, something went wrong on our side. Please try again."
	// ShutdownNotice is broadcast before connections are closed on shutdown.
	ShutdownNotice = "The chat server is shutting down. Goodbye!"
)

// Replier produces the assistant's answer to one user message.
type Replier interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// HistoryEraser deletes a user's stored conversation.
type HistoryEraser interface {
	Clear(ctx context.Context, userID string) error
}

// Server routes WebSocket chat traffic to a Replier.
type Server struct {
	replier  Replier
	history  HistoryEraser
	registry *Registry
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closing so no handler joins wg once Close has started waiting.
	mu        sync.Mutex
	closing   bool
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables DELETE /history/{userID}.
func WithHistory(h HistoryEraser) Option {
	return func(s *Server) { s.history = h }
}

// New creates a server answering with replier.
func New(replier Replier, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		replier:  replier,
		registry: NewRegistry(),
		upgrader: websocket.Upgrader{
			// Terminal clients send no Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the live connection registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/{userID}", s.handleWS)
	if s.history != nil {
		r.Delete("/history/{userID}", s.handleClearHistory)
	}

	return r
}

// Close notifies connected clients, closes every connection, and waits for
// the connection handlers to return. Later calls are no-ops.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		s.mu.Unlock()

		if n, err := s.registry.Broadcast(wire.Inbound{Content: ShutdownNotice, Role: wire.RoleAssistant}); err != nil {
			slog.Warn("shutdown_broadcast_error", "sent", n, "error", err)
		}
		s.cancel()
		s.registry.CloseAll("server shutdown")
		s.wg.Wait()
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	if !s.track() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws_upgrade_error", "user_id", userID, "error", err)
		return
	}
	ws.SetReadLimit(maxFrameBytes)

	conn := newConn(userID, ws)
	s.registry.Add(conn)
	// Close cancels before CloseAll, so a connection added after the
	// CloseAll snapshot sees the cancelled context here.
	if s.ctx.Err() != nil {
		s.registry.Remove(conn)
		conn.close(websocket.CloseGoingAway, "server shutdown")
		return
	}
	slog.Info("ws_connected", "user_id", userID, "connections", s.registry.Count(userID))

	defer func() {
		s.registry.Remove(conn)
		conn.close(websocket.CloseNormalClosure, "")
		slog.Info("ws_disconnected", "user_id", userID)
	}()

	s.readLoop(conn)
}

// track registers a running handler unless Close has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	if err := s.history.Clear(r.Context(), userID); err != nil {
		slog.Error("history_clear_error", "user_id", userID, "error", err)
		http.Error(w, "failed to clear history", http.StatusInternalServerError)
		return
	}
	slog.Info("history_cleared", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// readLoop handles frames from conn until the connection ends.
func (s *Server) readLoop(conn *Conn) {
	for {
		msgType, payload, err := conn.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && s.ctx.Err() == nil {
				slog.Debug("ws_read_end", "user_id", conn.UserID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		frame, err := wire.DecodeOutbound(payload)
		if err != nil {
			slog.Warn("frame_malformed", "user_id", conn.UserID, "error", err)
			continue
		}
		if strings.TrimSpace(frame.Message) == "" {
			slog.Debug("frame_empty", "user_id", conn.UserID)
			continue
		}

		slog.Debug("frame_received", "user_id", conn.UserID, "len", len(frame.Message))
		s.answer(conn.UserID, frame.Message)
	}
}

func (s *Server) answer(userID, message string) {
	reply, err := s.replier.Reply(s.ctx, userID, message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("reply_error", "user_id", userID, "error", err)
		reply = ErrorReply
	}

	n, err := s.registry.SendPersonal(userID, wire.Inbound{Content: reply, Role: wire.RoleAssistant})
	if err != nil {
		slog.Warn("reply_send_error", "user_id", userID, "sent", n, "error", err)
	}
}
