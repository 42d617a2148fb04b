// Package styles provides the chat client's light and dark palettes and the
// styles derived from them.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette holds the colors for one theme.
type Palette struct {
	Accent       color.Color
	Text         color.Color
	TextMuted    color.Color
	Error        color.Color
	Border       color.Color
	Incoming     color.Color // assistant bubble background
	IncomingText color.Color
	Outgoing     color.Color // user bubble background
	OutgoingText color.Color
	StatusFg     color.Color
	StatusBg     color.Color
}

// NewPalette returns the dark palette when isDark is set and the light one otherwise.
func NewPalette(isDark bool) Palette {
	ld := lipgloss.LightDark(isDark)
	return Palette{
		Accent:       ld(lipgloss.Color("#5B3FD1"), lipgloss.Color("141")),
		Text:         ld(lipgloss.Color("#1F1F1F"), lipgloss.Color("252")),
		TextMuted:    ld(lipgloss.Color("#6B6B6B"), lipgloss.Color("245")),
		Error:        ld(lipgloss.Color("#C62828"), lipgloss.Color("196")),
		Border:       ld(lipgloss.Color("#B8B8C8"), lipgloss.Color("62")),
		Incoming:     ld(lipgloss.Color("#ECECF1"), lipgloss.Color("237")),
		IncomingText: ld(lipgloss.Color("#1F1F1F"), lipgloss.Color("252")),
		Outgoing:     ld(lipgloss.Color("#5B3FD1"), lipgloss.Color("#7D56F4")),
		OutgoingText: ld(lipgloss.Color("#FFFFFF"), lipgloss.Color("#FAFAFA")),
		StatusFg:     ld(lipgloss.Color("#FAFAFA"), lipgloss.Color("#D0D0D0")),
		StatusBg:     ld(lipgloss.Color("#5B3FD1"), lipgloss.Color("#3C3C3C")),
	}
}

// Styles is the set of styles every component renders with.
type Styles struct {
	Dark bool

	Box       lipgloss.Style
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Footer    lipgloss.Style
	Error     lipgloss.Style
	Key       lipgloss.Style
	Selected  lipgloss.Style
	Separator lipgloss.Style

	Incoming lipgloss.Style
	Outgoing lipgloss.Style

	Status lipgloss.Style
}

// New builds the styles for a theme.
func New(isDark bool) Styles {
	p := NewPalette(isDark)
	return Styles{
		Dark: isDark,

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Text: lipgloss.NewStyle().
			Foreground(p.Text),
		Muted: lipgloss.NewStyle().
			Foreground(p.TextMuted),
		Footer: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
		Key: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(p.OutgoingText).
			Background(p.Accent).
			Bold(true),
		Separator: lipgloss.NewStyle().
			Foreground(p.Border),

		Incoming: lipgloss.NewStyle().
			Foreground(p.IncomingText).
			Background(p.Incoming).
			Padding(0, 1),
		Outgoing: lipgloss.NewStyle().
			Foreground(p.OutgoingText).
			Background(p.Outgoing).
			Padding(0, 1),

		Status: lipgloss.NewStyle().
			Foreground(p.StatusFg).
			Background(p.StatusBg).
			Padding(0, 1).
			Bold(true),
	}
}
