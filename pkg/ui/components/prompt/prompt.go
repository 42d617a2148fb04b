// Package prompt renders the blocking display-name dialog shown at startup.
package prompt

import (
	"strings"

	"chatbox/pkg/ui/styles"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// EmptyNameAlert is shown when the submitted name is blank.
const EmptyNameAlert = "Please enter your name!"

const footerLabel = "Enter Start | Ctrl+C Quit"

// SubmitMsg carries the raw name entered in the prompt.
type SubmitMsg struct {
	Name string
}

// Prompt is the name-entry dialog.
type Prompt struct {
	input   textinput.Model
	alert   string
	visible bool
	width   int
	height  int
	styles  styles.Styles
}

// New returns a visible prompt.
func New() *Prompt {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.Prompt = "> "
	ti.CharLimit = 64
	return &Prompt{
		input:   ti,
		visible: true,
		styles:  styles.New(true),
	}
}

// Focus focuses the name input.
func (p *Prompt) Focus() tea.Cmd {
	return p.input.Focus()
}

// Hide closes the prompt.
func (p *Prompt) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible reports whether the prompt is open.
func (p *Prompt) IsVisible() bool {
	return p.visible
}

// SetSize updates the available screen area.
func (p *Prompt) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetStyles applies a theme.
func (p *Prompt) SetStyles(st styles.Styles) {
	p.styles = st
	p.input.SetStyles(textinput.DefaultStyles(st.Dark))
}

// ShowAlert displays msg inside the prompt.
func (p *Prompt) ShowAlert(msg string) {
	p.alert = msg
}

// Alert returns the current alert text.
func (p *Prompt) Alert() string {
	return p.alert
}

// Value returns the typed name.
func (p *Prompt) Value() string {
	return p.input.Value()
}

// Update handles a key press. Enter submits the current value as a SubmitMsg;
// other keys edit the name and clear any alert.
func (p *Prompt) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !p.visible {
		return nil
	}
	if msg.String() == "enter" {
		name := p.input.Value()
		return func() tea.Msg {
			return SubmitMsg{Name: name}
		}
	}
	p.alert = ""
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// View renders the dialog centered in the screen area.
func (p *Prompt) View() string {
	if !p.visible {
		return ""
	}

	boxWidth := p.width - 4
	if boxWidth > 50 {
		boxWidth = 50
	}
	if boxWidth < 24 {
		boxWidth = 24
	}
	p.input.SetWidth(boxWidth - 8)

	var content strings.Builder
	content.WriteString(p.styles.Title.Render("Welcome!"))
	content.WriteString("\n\n")
	content.WriteString(p.styles.Text.Render("What should we call you?"))
	content.WriteString("\n\n")
	content.WriteString(p.input.View())
	content.WriteString("\n\n")
	if p.alert != "" {
		content.WriteString(p.styles.Error.Render(p.alert))
		content.WriteString("\n")
	}
	content.WriteString(p.styles.Footer.Render(footerLabel))

	box := p.styles.Box.Width(boxWidth).Render(content.String())
	if p.width <= 0 || p.height <= 0 {
		return box
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}
