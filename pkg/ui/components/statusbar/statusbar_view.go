// Package statusbar renders the one-line status bar at the bottom of the chat.
package statusbar

import (
	"fmt"
	"strings"

	"chatbox/pkg/ui/styles"

	"github.com/charmbracelet/x/ansi"
)

// Connection is the channel state shown on the right of the bar.
type Connection int

const (
	Offline Connection = iota
	Connecting
	Connected
	Disconnected
)

func (c Connection) String() string {
	switch c {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "offline"
	}
}

const (
	prefix = "[chatbox]"
	minGap = 2
)

// StatusBarView renders user, connection state, a transient message and the
// theme toggle label.
type StatusBarView struct {
	user       string
	message    string
	isError    bool
	connection Connection
	themeLabel string
	width      int
	styles     styles.Styles
}

// NewStatusBarView returns a bar 80 cells wide.
func NewStatusBarView() *StatusBarView {
	return &StatusBarView{
		width:  80,
		styles: styles.New(true),
	}
}

// SetUser sets the identifier shown when no message is pending.
func (s *StatusBarView) SetUser(user string) {
	s.user = strings.TrimSpace(user)
}

// SetMessage sets an informational message.
func (s *StatusBarView) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError sets an error message.
func (s *StatusBarView) SetError(msg string) {
	s.message = msg
	s.isError = true
}

// ClearMessage drops the pending message.
func (s *StatusBarView) ClearMessage() {
	s.message = ""
	s.isError = false
}

// Message returns the pending message.
func (s *StatusBarView) Message() string {
	return s.message
}

// SetConnection updates the connection state.
func (s *StatusBarView) SetConnection(c Connection) {
	s.connection = c
}

// Connection returns the connection state.
func (s *StatusBarView) Connection() Connection {
	return s.connection
}

// SetThemeLabel sets the label of the theme toggle (the next theme).
func (s *StatusBarView) SetThemeLabel(label string) {
	s.themeLabel = label
}

// SetWidth updates the width for rendering.
func (s *StatusBarView) SetWidth(width int) {
	s.width = width
}

// SetStyles applies a theme.
func (s *StatusBarView) SetStyles(st styles.Styles) {
	s.styles = st
}

// Render returns the styled bar exactly width cells wide.
func (s *StatusBarView) Render() string {
	right := s.connection.String()
	if s.themeLabel != "" {
		right = fmt.Sprintf("%s | Ctrl+T %s", right, s.themeLabel)
	}

	left := prefix
	body := s.user
	if s.message != "" {
		body = s.message
	}
	if body != "" {
		left = prefix + " " + body
	}

	inner := s.width - s.styles.Status.GetHorizontalFrameSize()
	if inner < 0 {
		inner = 0
	}

	rightWidth := ansi.StringWidth(right)
	var content string
	if rightWidth+minGap >= inner {
		content = ansi.Truncate(left, inner, "...")
	} else {
		leftAvailable := inner - rightWidth - minGap
		left = ansi.Truncate(left, leftAvailable, "...")
		gap := inner - ansi.StringWidth(left) - rightWidth
		content = left + strings.Repeat(" ", gap) + right
	}
	if w := ansi.StringWidth(content); w < inner {
		content += strings.Repeat(" ", inner-w)
	}

	style := s.styles.Status
	if s.isError && s.message != "" {
		style = style.Foreground(s.styles.Error.GetForeground())
	}
	return style.Render(content)
}
