package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"chatbox/pkg/prefs"
	"chatbox/pkg/session"
	"chatbox/pkg/transport"
	"chatbox/pkg/ui/components/chatlist"
	"chatbox/pkg/ui/components/confirm"
	"chatbox/pkg/ui/components/prompt"
	"chatbox/pkg/ui/components/statusbar"
	"chatbox/pkg/ui/components/testutils"
	"chatbox/pkg/wire"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

type harness struct {
	model  Model
	store  *prefs.MemoryStore
	ch     *transport.MemoryChannel
	dialer *transport.MemoryDialer
}

func newHarness(t *testing.T, seed map[string]string) *harness {
	t.Helper()
	store := prefs.NewMemoryStore(seed)
	ch := transport.NewMemoryChannel()
	dialer := transport.NewMemoryDialer(ch)
	ctrl := session.New(store, dialer, session.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	m := NewModel(context.Background(), ctrl)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return &harness{model: next.(Model), store: store, ch: ch, dialer: dialer}
}

func (h *harness) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// start submits name and completes the dial.
func (h *harness) start(t *testing.T, name string) {
	t.Helper()
	h.update(t, prompt.SubmitMsg{Name: name})
	if h.model.prompt.IsVisible() {
		t.Fatalf("Expected prompt to close for name %q", name)
	}
	h.update(t, connect(context.Background(), h.model.ctrl)())
}

func TestNewModel_ShowsPrompt(t *testing.T) {
	h := newHarness(t, nil)

	if !h.model.prompt.IsVisible() {
		t.Fatal("Expected prompt to be visible on start")
	}
	if h.model.Init() == nil {
		t.Error("Expected Init() to focus the prompt")
	}

	v := h.model.View()
	if !v.AltScreen {
		t.Error("Expected alt screen view")
	}
	if !strings.Contains(ansi.Strip(v.Content), "What should we call you?") {
		t.Errorf("Expected prompt in view, got:\n%s", ansi.Strip(v.Content))
	}
}

func TestModel_EmptyNameShowsAlert(t *testing.T) {
	h := newHarness(t, nil)

	for _, name := range []string{"", "   "} {
		h.update(t, prompt.SubmitMsg{Name: name})
		if !h.model.prompt.IsVisible() {
			t.Fatal("Expected prompt to stay open")
		}
		if h.model.prompt.Alert() != prompt.EmptyNameAlert {
			t.Errorf("Expected alert %q, got %q", prompt.EmptyNameAlert, h.model.prompt.Alert())
		}
	}
	if len(h.dialer.Dialed()) != 0 {
		t.Errorf("Expected no connection attempt, got %v", h.dialer.Dialed())
	}
}

func TestModel_StartConnects(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann Lee")

	dialed := h.dialer.Dialed()
	if len(dialed) != 1 || dialed[0] != "ann-lee-1700000000000" {
		t.Errorf("Unexpected dials %v", dialed)
	}
	if h.model.status.Connection() != statusbar.Connected {
		t.Errorf("Expected connected status, got %v", h.model.status.Connection())
	}
	if !h.model.ctrl.Connected() {
		t.Error("Expected controller to hold the channel")
	}
}

func TestModel_DialFailureShownInStatus(t *testing.T) {
	h := newHarness(t, nil)
	h.dialer.Err = errors.New("connection refused")
	h.start(t, "Ann")

	if h.model.status.Connection() != statusbar.Disconnected {
		t.Errorf("Expected disconnected status, got %v", h.model.status.Connection())
	}
	if !strings.Contains(h.model.status.Message(), "connection refused") {
		t.Errorf("Expected dial error in status, got %q", h.model.status.Message())
	}
	if len(h.dialer.Dialed()) != 1 {
		t.Error("Expected exactly one dial attempt")
	}
}

func TestModel_SendAppendsAndClearsInput(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	h.model.chat.SetInputValue("  book a ticket ")
	cmd := h.update(t, testutils.TestKeyEnter)
	if cmd == nil {
		t.Fatal("Expected submit command")
	}
	h.update(t, cmd())

	sent := h.ch.Sent()
	if len(sent) != 1 || sent[0].Message != "book a ticket" {
		t.Fatalf("Expected one trimmed frame, got %+v", sent)
	}
	msgs := h.model.chat.Messages()
	if len(msgs) != 1 || msgs[0].Incoming() {
		t.Errorf("Expected one outgoing bubble, got %+v", msgs)
	}
	if h.model.chat.InputValue() != "" {
		t.Errorf("Expected input cleared, got %q", h.model.chat.InputValue())
	}
	if h.model.banner.IsVisible() {
		t.Error("Expected greeting banner hidden after send")
	}
}

func TestModel_PasteGoesToComposer(t *testing.T) {
	h := newHarness(t, nil)

	h.update(t, tea.PasteMsg{Content: "ignored"})
	if h.model.chat.InputValue() != "" {
		t.Errorf("Expected paste ignored while prompt is open, got %q", h.model.chat.InputValue())
	}

	h.start(t, "Ann")
	h.update(t, tea.PasteMsg{Content: "route Hanoi - Hue"})
	if h.model.chat.InputValue() != "route Hanoi - Hue" {
		t.Errorf("Expected pasted text in composer, got %q", h.model.chat.InputValue())
	}
}

func TestModel_BlankSendIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	h.model.chat.SetInputValue("   ")
	h.update(t, chatlist.SubmitMsg{Text: "   "})

	if len(h.ch.Sent()) != 0 || len(h.model.chat.Messages()) != 0 {
		t.Error("Expected no frame and no bubble for blank input")
	}
	if h.model.chat.InputValue() != "   " {
		t.Error("Expected input to be left untouched")
	}
	if !h.model.banner.IsVisible() {
		t.Error("Expected banner to stay visible")
	}
}

func TestModel_InboundAppendsAndKeepsListening(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	cmd := h.update(t, inboundMsg{frame: wire.Inbound{Content: "Hi Ann", Role: wire.RoleAssistant}})
	if cmd == nil {
		t.Fatal("Expected next listen command")
	}
	h.update(t, inboundMsg{frame: wire.Inbound{Content: "echo", Role: wire.RoleUser}})

	msgs := h.model.chat.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if !msgs[0].Incoming() || msgs[1].Incoming() {
		t.Errorf("Unexpected bubble sides: %+v", msgs)
	}

	h.ch.Deliver(wire.Inbound{Content: "queued", Role: wire.RoleAssistant})
	got, ok := cmd().(inboundMsg)
	if !ok || got.frame.Content != "queued" {
		t.Errorf("Expected listen command to read the next frame, got %+v", got)
	}
}

func TestModel_MalformedFrameKeepsListening(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	err := fmt.Errorf("%w: bad json", transport.ErrMalformedFrame)
	cmd := h.update(t, receiveErrMsg{err: err})
	if cmd == nil {
		t.Error("Expected receive loop to continue after a malformed frame")
	}
	if h.model.status.Connection() != statusbar.Connected {
		t.Error("Expected connection to stay up")
	}
	if !strings.Contains(h.model.status.Message(), "malformed") {
		t.Errorf("Expected malformed frame in status, got %q", h.model.status.Message())
	}
}

func TestModel_ChannelClosedStopsListening(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	cmd := h.update(t, receiveErrMsg{err: transport.ErrClosed})
	if cmd != nil {
		t.Error("Expected no reconnection or further reads")
	}
	if h.model.status.Connection() != statusbar.Disconnected {
		t.Errorf("Expected disconnected, got %v", h.model.status.Connection())
	}
}

func TestModel_ThemeToggleRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	if h.model.ctrl.Theme() != prefs.DarkMode {
		t.Fatalf("Expected dark default, got %q", h.model.ctrl.Theme())
	}

	h.update(t, testutils.TestKeyCtrlT)
	if v, _ := h.store.Get(prefs.ThemeKey); v != "light_mode" {
		t.Errorf("Expected light_mode stored, got %q", v)
	}
	if !strings.Contains(ansi.Strip(h.model.status.Render()), "Ctrl+T dark_mode") {
		t.Error("Expected toggle label to offer dark_mode while light")
	}

	h.update(t, testutils.TestKeyCtrlT)
	if v, _ := h.store.Get(prefs.ThemeKey); v != "dark_mode" {
		t.Errorf("Expected dark_mode stored, got %q", v)
	}
	if h.model.ctrl.Theme() != prefs.DarkMode {
		t.Error("Expected theme back to dark")
	}
}

func TestModel_LoadsStoredTheme(t *testing.T) {
	h := newHarness(t, map[string]string{prefs.ThemeKey: "light_mode"})
	if h.model.ctrl.Theme() != prefs.LightMode {
		t.Errorf("Expected stored light theme, got %q", h.model.ctrl.Theme())
	}
	if !strings.Contains(ansi.Strip(h.model.status.Render()), "Ctrl+T dark_mode") {
		t.Error("Expected toggle label to reflect the stored theme")
	}
}

func TestModel_ClearConfirmed(t *testing.T) {
	h := newHarness(t, map[string]string{prefs.SavedChatsKey: "[]"})
	h.start(t, "Ann")
	h.update(t, inboundMsg{frame: wire.Inbound{Content: "Hi", Role: wire.RoleAssistant}})

	h.update(t, testutils.TestKeyCtrlX)
	if !h.model.confirm.IsVisible() {
		t.Fatal("Expected confirmation dialog")
	}
	if !strings.Contains(ansi.Strip(h.model.View().Content), confirm.ClearChatsQuestion) {
		t.Error("Expected question in view")
	}

	cmd := h.update(t, testutils.NewTextKeyPressMsg("y"))
	if cmd == nil {
		t.Fatal("Expected result command")
	}
	h.update(t, cmd())

	if len(h.model.chat.Messages()) != 0 {
		t.Error("Expected chat list to be empty")
	}
	if _, ok := h.store.Get(prefs.SavedChatsKey); ok {
		t.Error("Expected saved-chats to be removed")
	}
}

func TestModel_ClearDeclined(t *testing.T) {
	h := newHarness(t, map[string]string{prefs.SavedChatsKey: "[]"})
	h.start(t, "Ann")
	h.update(t, inboundMsg{frame: wire.Inbound{Content: "Hi", Role: wire.RoleAssistant}})

	h.update(t, testutils.TestKeyCtrlX)
	cmd := h.update(t, testutils.TestKeyEsc)
	h.update(t, cmd())

	if len(h.model.chat.Messages()) != 1 {
		t.Error("Expected chat list unchanged")
	}
	if _, ok := h.store.Get(prefs.SavedChatsKey); !ok {
		t.Error("Expected saved-chats to be kept")
	}
}

func TestModel_CtrlCClosesSession(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t, "Ann")

	cmd := h.update(t, testutils.TestKeyCtrlC)
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !h.ch.IsClosed() {
		t.Error("Expected channel to be closed on quit")
	}
}
