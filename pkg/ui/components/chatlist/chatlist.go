// Package chatlist renders the conversation as a scrolling list of message
// bubbles above a text input.
package chatlist

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chatbox/pkg/ui/components/utils"
	"chatbox/pkg/ui/styles"
	"chatbox/pkg/wire"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

const (
	inputHeight   = 3
	separatorRows = 1
	pageSize      = 10
	emptyLabel    = "No messages yet."
)

// SubmitMsg carries the raw input text when Enter is pressed.
type SubmitMsg struct {
	Text string
}

// CopiedMsg reports a clipboard copy of the last message.
type CopiedMsg struct {
	Length int
}

// ChatList is the message area plus the input box.
type ChatList struct {
	messages []wire.Message
	lines    []string
	width    int
	height   int
	scrollY  int
	follow   bool

	input     textarea.Model
	styles    styles.Styles
	clipboard io.Writer
}

// New returns an empty list in follow mode.
func New() *ChatList {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	return &ChatList{
		follow:    true,
		input:     ta,
		styles:    styles.New(true),
		clipboard: os.Stdout,
	}
}

// Focus focuses the input.
func (c *ChatList) Focus() tea.Cmd {
	return c.input.Focus()
}

// SetSize sets the area available to the list and the input together.
func (c *ChatList) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.input.SetWidth(width)
	c.reflow()
}

// SetStyles applies a theme and re-renders the bubbles.
func (c *ChatList) SetStyles(st styles.Styles) {
	c.styles = st
	c.input.SetStyles(textarea.DefaultStyles(st.Dark))
	c.reflow()
}

// SetClipboard redirects OSC52 copy sequences.
func (c *ChatList) SetClipboard(w io.Writer) {
	c.clipboard = w
}

// SetMessages replaces the rendered conversation.
func (c *ChatList) SetMessages(msgs []wire.Message) {
	c.messages = append([]wire.Message(nil), msgs...)
	c.reflow()
}

// Append adds one message at the end and scrolls to it, even when the
// user had scrolled up.
func (c *ChatList) Append(msg wire.Message) {
	c.messages = append(c.messages, msg)
	c.follow = true
	c.reflow()
}

// Messages returns the rendered conversation.
func (c *ChatList) Messages() []wire.Message {
	return c.messages
}

// InputValue returns the text typed so far.
func (c *ChatList) InputValue() string {
	return c.input.Value()
}

// SetInputValue replaces the typed text.
func (c *ChatList) SetInputValue(s string) {
	c.input.SetValue(s)
}

// ResetInput clears the input box.
func (c *ChatList) ResetInput() {
	c.input.Reset()
}

// Following reports whether the list tracks the newest message.
func (c *ChatList) Following() bool {
	return c.follow
}

// ScrollOffset returns the index of the first visible line.
func (c *ChatList) ScrollOffset() int {
	return c.scrollY
}

// Update handles a key press.
func (c *ChatList) Update(msg tea.KeyPressMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "enter":
		text := c.input.Value()
		return func() tea.Msg {
			return SubmitMsg{Text: text}
		}
	case "up", "down", "pgup", "pgdown", "home", "end":
		c.handleScroll(key)
		return nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// HandlePaste inserts pasted text into the input.
func (c *ChatList) HandlePaste(content string) {
	c.input.InsertString(content)
}

// CopyLast copies the newest message to the clipboard with OSC52.
func (c *ChatList) CopyLast() tea.Cmd {
	if len(c.messages) == 0 {
		return nil
	}
	text := c.messages[len(c.messages)-1].Content
	w := c.clipboard
	return func() tea.Msg {
		_, _ = fmt.Fprint(w, osc52.New(text))
		return CopiedMsg{Length: len(text)}
	}
}

func (c *ChatList) handleScroll(key string) {
	maxScroll := c.maxScroll()

	switch key {
	case "up":
		if c.scrollY > 0 {
			c.scrollY--
			c.follow = false
		}
	case "down":
		if c.scrollY < maxScroll {
			c.scrollY++
		}
		c.follow = c.scrollY >= maxScroll
	case "pgup":
		c.scrollY -= pageSize
		if c.scrollY < 0 {
			c.scrollY = 0
		}
		c.follow = false
	case "pgdown":
		c.scrollY += pageSize
		if c.scrollY > maxScroll {
			c.scrollY = maxScroll
		}
		c.follow = c.scrollY >= maxScroll
	case "home":
		c.scrollY = 0
		c.follow = maxScroll == 0
	case "end":
		c.scrollY = maxScroll
		c.follow = true
	}
}

// View renders the visible part of the list, a separator and the input.
func (c *ChatList) View() string {
	width := c.contentWidth()
	viewportHeight := c.viewportHeight()

	lines := make([]string, 0, c.height)

	if len(c.lines) == 0 {
		lines = append(lines, utils.PadStyled(c.styles.Muted.Render(emptyLabel), width))
	} else {
		end := c.scrollY + viewportHeight
		if end > len(c.lines) {
			end = len(c.lines)
		}
		for i := c.scrollY; i < end; i++ {
			lines = append(lines, utils.PadStyled(c.lines[i], width))
		}
	}
	for len(lines) < viewportHeight {
		lines = append(lines, strings.Repeat(" ", width))
	}

	lines = append(lines, c.styles.Separator.Render(strings.Repeat("─", width)))

	for i, line := range strings.Split(c.input.View(), "\n") {
		if i >= inputHeight {
			break
		}
		lines = append(lines, utils.PadStyled(line, width))
	}

	return strings.Join(lines, "\n")
}

func (c *ChatList) reflow() {
	width := c.contentWidth()
	c.lines = c.lines[:0]
	for i, msg := range c.messages {
		if i > 0 {
			c.lines = append(c.lines, "")
		}
		c.lines = append(c.lines, c.renderBubble(msg, width)...)
	}
	maxScroll := c.maxScroll()
	if c.follow || c.scrollY > maxScroll {
		c.scrollY = maxScroll
	}
}

// renderBubble lays out one message: assistant bubbles on the left, all
// other roles on the right.
func (c *ChatList) renderBubble(msg wire.Message, width int) []string {
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 8 {
		bubbleWidth = width
	}
	style := c.styles.Outgoing
	if msg.Incoming() {
		style = c.styles.Incoming
	}
	textWidth := bubbleWidth - style.GetHorizontalFrameSize()
	if textWidth < 1 {
		textWidth = 1
	}

	wrapped := utils.Wrap(utils.Sanitize(msg.Content), textWidth)
	inner := 0
	for _, line := range wrapped {
		if w := lipgloss.Width(line); w > inner {
			inner = w
		}
	}

	out := make([]string, 0, len(wrapped))
	for _, line := range wrapped {
		rendered := style.Render(utils.PadStyled(line, inner))
		if !msg.Incoming() {
			if pad := width - lipgloss.Width(rendered); pad > 0 {
				rendered = strings.Repeat(" ", pad) + rendered
			}
		}
		out = append(out, rendered)
	}
	return out
}

func (c *ChatList) contentWidth() int {
	if c.width < 1 {
		return 1
	}
	return c.width
}

func (c *ChatList) viewportHeight() int {
	h := c.height - inputHeight - separatorRows
	if h < 1 {
		return 1
	}
	return h
}

func (c *ChatList) maxScroll() int {
	max := len(c.lines) - c.viewportHeight()
	if max < 0 {
		return 0
	}
	return max
}
