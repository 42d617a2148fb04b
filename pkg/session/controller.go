// Package session holds the chat client's application state and the
// operations the view drives: start, send, receive, theme toggle and clear.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chatbox/pkg/identity"
	"chatbox/pkg/prefs"
	"chatbox/pkg/transport"
	"chatbox/pkg/wire"
)

var (
	// ErrNotConnected is returned by Send before a channel is open.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("session already started")
)

// Controller owns the conversation state for one client session.
// It is not safe for concurrent use; the UI event loop is its only caller.
type Controller struct {
	store  prefs.Store
	dialer transport.Dialer
	ids    *identity.Generator

	userID   string
	channel  transport.Channel
	messages []wire.Message
	theme    prefs.Theme
	greeting bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used for identifier derivation.
func WithClock(clock identity.Clock) Option {
	return func(c *Controller) {
		c.ids = identity.NewGenerator(clock)
	}
}

// New returns a controller that persists preferences in store and connects through dialer.
func New(store prefs.Store, dialer transport.Dialer, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		dialer:   dialer,
		ids:      identity.NewGenerator(nil),
		theme:    prefs.DarkMode,
		greeting: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadTheme applies the stored theme. Call it before the first render.
func (c *Controller) LoadTheme() prefs.Theme {
	c.theme = prefs.LoadTheme(c.store)
	return c.theme
}

// Start derives the user identifier from name and opens the channel.
// An empty name returns identity.ErrEmptyName and changes nothing.
// A dial failure keeps the identifier but leaves the session without a channel.
func (c *Controller) Start(ctx context.Context, name string) (string, error) {
	userID, err := c.Begin(name)
	if err != nil {
		return userID, err
	}
	ch, err := c.Connect(ctx)
	if err != nil {
		return userID, err
	}
	c.Attach(ch)
	return userID, nil
}

// Begin derives and records the user identifier without dialing.
func (c *Controller) Begin(name string) (string, error) {
	if c.userID != "" {
		return c.userID, ErrAlreadyStarted
	}
	userID, err := c.ids.Generate(name)
	if err != nil {
		return "", err
	}
	c.userID = userID
	slog.Info("session_started", "user_id", userID)
	return userID, nil
}

// Connect dials the channel for the recorded identifier. It reads no mutable
// state, so the UI may run it off the event loop and Attach the result.
func (c *Controller) Connect(ctx context.Context) (transport.Channel, error) {
	userID := c.userID
	if userID == "" {
		return nil, ErrNotConnected
	}
	ch, err := c.dialer.Dial(ctx, userID)
	if err != nil {
		slog.Error("session_dial_failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("connect: %w", err)
	}
	return ch, nil
}

// Attach makes ch the session's channel.
func (c *Controller) Attach(ch transport.Channel) {
	c.channel = ch
}

// Send appends an outgoing message and transmits it without waiting for
// acknowledgement. Blank text is ignored and reported as not sent.
func (c *Controller) Send(ctx context.Context, text string) (wire.Message, bool, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return wire.Message{}, false, nil
	}
	if c.channel == nil {
		return wire.Message{}, false, ErrNotConnected
	}

	msg := wire.Message{Content: content, Role: wire.RoleUser}
	c.messages = append(c.messages, msg)
	c.HideGreeting()

	if err := c.channel.Send(ctx, wire.Outbound{Message: content}); err != nil {
		slog.Error("frame_send_failed", "user_id", c.userID, "error", err)
		return msg, true, fmt.Errorf("send: %w", err)
	}
	slog.Debug("frame_sent", "user_id", c.userID, "length", len(content))
	return msg, true, nil
}

// Receive appends the message carried by an inbound frame.
func (c *Controller) Receive(frame wire.Inbound) wire.Message {
	msg := frame.Message()
	c.messages = append(c.messages, msg)
	slog.Debug("frame_received", "user_id", c.userID, "role", string(msg.Role))
	return msg
}

// ToggleTheme flips and persists the theme. The new theme is applied even
// when persisting fails.
func (c *Controller) ToggleTheme() (prefs.Theme, error) {
	c.theme = c.theme.Toggled()
	if err := prefs.SaveTheme(c.store, c.theme); err != nil {
		return c.theme, err
	}
	return c.theme, nil
}

// Clear empties the conversation and forgets saved chats when confirmed.
// A declined confirmation changes nothing.
func (c *Controller) Clear(confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	c.messages = nil
	if err := c.store.Remove(prefs.SavedChatsKey); err != nil {
		return true, fmt.Errorf("clear saved chats: %w", err)
	}
	slog.Info("chat_cleared", "user_id", c.userID)
	return true, nil
}

// HideGreeting hides the greeting banner. Hiding twice is a no-op.
func (c *Controller) HideGreeting() {
	c.greeting = false
}

// GreetingVisible reports whether the greeting banner is still shown.
func (c *Controller) GreetingVisible() bool {
	return c.greeting
}

// Messages returns a copy of the conversation in arrival order.
func (c *Controller) Messages() []wire.Message {
	out := make([]wire.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Theme returns the active theme.
func (c *Controller) Theme() prefs.Theme {
	return c.theme
}

// UserID returns the identifier, empty before Start.
func (c *Controller) UserID() string {
	return c.userID
}

// Channel returns the open channel or nil.
func (c *Controller) Channel() transport.Channel {
	return c.channel
}

// Connected reports whether a channel is open.
func (c *Controller) Connected() bool {
	return c.channel != nil
}

// Close tears the session down.
func (c *Controller) Close() error {
	if c.channel == nil {
		return nil
	}
	ch := c.channel
	c.channel = nil
	slog.Info("session_closed", "user_id", c.userID)
	return ch.Close()
}
