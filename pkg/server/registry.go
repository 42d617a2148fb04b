package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"chatbox/pkg/wire"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn is one live WebSocket connection owned by a user.
// gorilla allows one concurrent writer, so writes are serialized.
type Conn struct {
	UserID string

	ws      *websocket.Conn
	writeMu sync.Mutex
}

func newConn(userID string, ws *websocket.Conn) *Conn {
	return &Conn{UserID: userID, ws: ws}
}

// WriteFrame sends one inbound frame to the client.
func (c *Conn) WriteFrame(frame wire.Inbound) error {
	data, err := wire.EncodeInbound(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame to %s: %w", c.UserID, err)
	}
	return nil
}

func (c *Conn) close(code int, reason string) {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	_ = c.ws.Close()
}

// Registry tracks live connections per user.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[*Conn]struct{})}
}

// Add registers c under its user.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.UserID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.conns[c.UserID] = set
	}
	set[c] = struct{}{}
}

// Remove unregisters c. A user with no connections left is forgotten.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.UserID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, c.UserID)
	}
}

// Count returns the number of live connections for userID.
func (r *Registry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Users returns the connected user ids, sorted.
func (r *Registry) Users() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.conns))
	for id := range r.conns {
		users = append(users, id)
	}
	r.mu.RUnlock()
	sort.Strings(users)
	return users
}

// SendPersonal writes frame to every connection of userID and returns how many succeeded.
// The first write error is returned after all connections were tried.
func (r *Registry) SendPersonal(userID string, frame wire.Inbound) (int, error) {
	return sendAll(r.snapshot(userID), frame)
}

// Broadcast writes frame to every connection and returns how many succeeded.
func (r *Registry) Broadcast(frame wire.Inbound) (int, error) {
	return sendAll(r.snapshot(""), frame)
}

// CloseAll sends a going-away close frame to every connection and closes it.
func (r *Registry) CloseAll(reason string) {
	for _, c := range r.snapshot("") {
		c.close(websocket.CloseGoingAway, reason)
	}
}

// snapshot copies the connections of userID, or of everyone when userID is empty,
// so writes happen outside the lock.
func (r *Registry) snapshot(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Conn
	for id, set := range r.conns {
		if userID != "" && id != userID {
			continue
		}
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

func sendAll(conns []*Conn, frame wire.Inbound) (int, error) {
	var firstErr error
	sent := 0
	for _, c := range conns {
		if err := c.WriteFrame(frame); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	return sent, firstErr
}
