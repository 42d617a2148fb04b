// Package ui is the Bubble Tea front end of the chat client.
package ui

import (
	"context"
	"errors"
	"log/slog"

	"chatbox/pkg/identity"
	"chatbox/pkg/session"
	"chatbox/pkg/transport"
	"chatbox/pkg/ui/components/banner"
	"chatbox/pkg/ui/components/chatlist"
	"chatbox/pkg/ui/components/confirm"
	"chatbox/pkg/ui/components/prompt"
	"chatbox/pkg/ui/components/statusbar"
	"chatbox/pkg/ui/styles"
	"chatbox/pkg/wire"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const clearTag = "clear-chats"

type connectedMsg struct {
	ch  transport.Channel
	err error
}

type inboundMsg struct {
	frame wire.Inbound
}

type receiveErrMsg struct {
	err error
}

// Model is the root Bubble Tea model. It owns the components and drives the
// session controller; all controller calls happen inside Update.
type Model struct {
	ctx  context.Context
	ctrl *session.Controller

	prompt  *prompt.Prompt
	chat    *chatlist.ChatList
	banner  *banner.Banner
	confirm *confirm.Dialog
	status  *statusbar.StatusBarView

	width  int
	height int
}

// NewModel applies the stored theme and returns a model showing the name prompt.
func NewModel(ctx context.Context, ctrl *session.Controller) Model {
	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		prompt:  prompt.New(),
		chat:    chatlist.New(),
		banner:  banner.New(),
		confirm: confirm.New(),
		status:  statusbar.NewStatusBarView(),
		width:   80,
		height:  24,
	}
	ctrl.LoadTheme()
	m.applyTheme()
	m.layout()
	return m
}

// Init focuses the name prompt.
func (m Model) Init() tea.Cmd {
	return m.prompt.Focus()
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		if !m.prompt.IsVisible() && !m.confirm.IsVisible() {
			m.chat.HandlePaste(msg.Content)
		}
		return m, nil

	case prompt.SubmitMsg:
		return m.handleName(msg.Name)

	case connectedMsg:
		if msg.err != nil {
			m.status.SetConnection(statusbar.Disconnected)
			m.status.SetError(msg.err.Error())
			return m, nil
		}
		m.ctrl.Attach(msg.ch)
		m.status.SetConnection(statusbar.Connected)
		m.status.ClearMessage()
		return m, listen(m.ctx, msg.ch)

	case chatlist.SubmitMsg:
		return m.handleSend(msg.Text)

	case inboundMsg:
		m.chat.Append(m.ctrl.Receive(msg.frame))
		return m, listen(m.ctx, m.ctrl.Channel())

	case receiveErrMsg:
		return m.handleReceiveError(msg.err)

	case confirm.ResultMsg:
		if msg.Tag == clearTag {
			m.handleClear(msg.Confirmed)
		}
		return m, nil

	case chatlist.CopiedMsg:
		m.status.SetMessage("Copied last message")
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if err := m.ctrl.Close(); err != nil {
			slog.Warn("session_close_failed", "error", err)
		}
		return m, tea.Quit
	}

	if m.prompt.IsVisible() {
		return m, m.prompt.Update(msg)
	}
	if m.confirm.IsVisible() {
		return m, m.confirm.Update(msg)
	}

	switch msg.String() {
	case "ctrl+t":
		if _, err := m.ctrl.ToggleTheme(); err != nil {
			m.status.SetError(err.Error())
		}
		m.applyTheme()
		return m, nil
	case "ctrl+x":
		m.confirm.Show(clearTag, confirm.ClearChatsQuestion)
		return m, nil
	case "ctrl+y":
		return m, m.chat.CopyLast()
	}
	return m, m.chat.Update(msg)
}

func (m Model) handleName(name string) (tea.Model, tea.Cmd) {
	userID, err := m.ctrl.Begin(name)
	if errors.Is(err, identity.ErrEmptyName) {
		m.prompt.ShowAlert(prompt.EmptyNameAlert)
		return m, nil
	}
	if err != nil {
		m.prompt.ShowAlert(err.Error())
		return m, nil
	}

	m.prompt.Hide()
	m.status.SetUser(userID)
	m.status.SetConnection(statusbar.Connecting)
	return m, tea.Batch(m.chat.Focus(), connect(m.ctx, m.ctrl))
}

func (m Model) handleSend(text string) (tea.Model, tea.Cmd) {
	msg, sent, err := m.ctrl.Send(m.ctx, text)
	if sent {
		m.chat.Append(msg)
		m.chat.ResetInput()
		if !m.ctrl.GreetingVisible() && m.banner.IsVisible() {
			m.banner.Hide()
			m.layout()
		}
	}
	if err != nil {
		m.status.SetError(err.Error())
		if errors.Is(err, transport.ErrClosed) {
			m.status.SetConnection(statusbar.Disconnected)
		}
	}
	return m, nil
}

func (m Model) handleReceiveError(err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, transport.ErrMalformedFrame):
		slog.Warn("frame_malformed", "error", err)
		m.status.SetError(err.Error())
		return m, listen(m.ctx, m.ctrl.Channel())
	case errors.Is(err, context.Canceled):
		return m, nil
	}
	slog.Error("channel_receive_failed", "error", err)
	m.status.SetConnection(statusbar.Disconnected)
	if !errors.Is(err, transport.ErrClosed) {
		m.status.SetError(err.Error())
	}
	return m, nil
}

func (m Model) handleClear(confirmed bool) {
	cleared, err := m.ctrl.Clear(confirmed)
	if cleared {
		m.chat.SetMessages(nil)
	}
	if err != nil {
		m.status.SetError(err.Error())
		return
	}
	if cleared {
		m.status.SetMessage("Chats deleted")
	}
}

func (m Model) applyTheme() {
	theme := m.ctrl.Theme()
	st := styles.New(!theme.IsLight())
	m.prompt.SetStyles(st)
	m.chat.SetStyles(st)
	m.banner.SetStyles(st)
	m.confirm.SetStyles(st)
	m.status.SetStyles(st)
	m.status.SetThemeLabel(theme.ToggleLabel())
}

func (m Model) layout() {
	m.prompt.SetSize(m.width, m.height)
	m.confirm.SetSize(m.width, m.height-1)
	m.status.SetWidth(m.width)

	chatHeight := m.height - 1 - m.banner.Height(m.width)
	if chatHeight < 5 {
		chatHeight = 5
	}
	m.chat.SetSize(m.width, chatHeight)
}

// View renders the prompt before the session starts and the chat afterwards.
func (m Model) View() tea.View {
	var content string
	switch {
	case m.prompt.IsVisible():
		content = m.prompt.View()
	case m.confirm.IsVisible():
		content = lipgloss.JoinVertical(lipgloss.Left, m.confirm.View(), m.status.Render())
	default:
		parts := make([]string, 0, 3)
		if m.banner.IsVisible() {
			parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.banner.View(m.width)))
		}
		parts = append(parts, m.chat.View(), m.status.Render())
		content = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// connect dials off the event loop; the result is attached in Update.
func connect(ctx context.Context, ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ch, err := ctrl.Connect(ctx)
		return connectedMsg{ch: ch, err: err}
	}
}

// listen reads the next inbound frame. Update schedules it again after every
// delivered frame.
func listen(ctx context.Context, ch transport.Channel) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		frame, err := ch.Receive(ctx)
		if err != nil {
			return receiveErrMsg{err: err}
		}
		return inboundMsg{frame: frame}
	}
}
