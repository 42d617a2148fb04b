// Package confirm provides a yes/no dialog.
package confirm

import (
	"strings"

	"chatbox/pkg/ui/components/utils"
	"chatbox/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ClearChatsQuestion is asked before deleting the conversation.
const ClearChatsQuestion = "Are you sure you want to delete all the chats?"

const footerLabel = "Left/Right Choose | Enter Confirm | y/n | Esc Cancel"

var choices = []string{"Yes", "No"}

// ResultMsg reports the user's answer. Tag identifies the question.
type ResultMsg struct {
	Tag       string
	Confirmed bool
}

// Dialog is a modal yes/no question. "No" is preselected.
type Dialog struct {
	tag      string
	question string
	selected int
	visible  bool
	width    int
	height   int
	styles   styles.Styles
}

// New returns a hidden dialog.
func New() *Dialog {
	return &Dialog{styles: styles.New(true)}
}

// Show opens the dialog with question.
func (d *Dialog) Show(tag, question string) {
	d.tag = tag
	d.question = question
	d.selected = 1
	d.visible = true
}

// Hide closes the dialog without answering.
func (d *Dialog) Hide() {
	d.visible = false
}

// IsVisible reports whether the dialog is open.
func (d *Dialog) IsVisible() bool {
	return d.visible
}

// SetSize updates the available screen area.
func (d *Dialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// SetStyles applies a theme.
func (d *Dialog) SetStyles(st styles.Styles) {
	d.styles = st
}

// Update handles a key press and returns a ResultMsg command once answered.
func (d *Dialog) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !d.visible {
		return nil
	}

	switch msg.String() {
	case "left", "up", "shift+tab":
		d.selected = 0
	case "right", "down", "tab":
		d.selected = 1
	case "y", "Y":
		return d.answer(true)
	case "n", "N", "esc":
		return d.answer(false)
	case "enter":
		return d.answer(d.selected == 0)
	}
	return nil
}

func (d *Dialog) answer(yes bool) tea.Cmd {
	d.Hide()
	tag := d.tag
	return func() tea.Msg {
		return ResultMsg{Tag: tag, Confirmed: yes}
	}
}

// View renders the dialog centered in the screen area.
func (d *Dialog) View() string {
	if !d.visible {
		return ""
	}

	boxWidth := d.width - 2
	if boxWidth > 60 {
		boxWidth = 60
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	contentWidth := boxWidth - d.styles.Box.GetHorizontalFrameSize()

	var content strings.Builder
	for i, line := range utils.Wrap(d.question, contentWidth) {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(d.styles.Title.Render(line))
	}
	content.WriteString("\n\n")

	buttons := make([]string, 0, len(choices))
	for i, choice := range choices {
		label := "  " + choice + "  "
		if i == d.selected {
			buttons = append(buttons, d.styles.Selected.Render(label))
		} else {
			buttons = append(buttons, d.styles.Text.Render(label))
		}
	}
	content.WriteString(strings.Join(buttons, "  "))
	content.WriteString("\n\n")
	content.WriteString(d.styles.Footer.Render(utils.TruncateToWidth(footerLabel, contentWidth)))

	box := d.styles.Box.Width(boxWidth).Render(content.String())
	if d.width <= 0 || d.height <= 0 {
		return box
	}
	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
}
