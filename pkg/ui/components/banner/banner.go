// Package banner renders the one-time greeting shown above an empty chat.
package banner

import (
	"fmt"
	"strings"

	"chatbox/pkg/ui/components/utils"
	"chatbox/pkg/ui/styles"
	"chatbox/pkg/version"

	"github.com/mattn/go-runewidth"
)

const (
	Title    = "Hello, there"
	Subtitle = "How can I help you today?"
)

var shortcuts = []struct{ key, desc string }{
	{"Enter", "Send message"},
	{"Ctrl+T", "Toggle light/dark theme"},
	{"Ctrl+X", "Delete all chats"},
	{"Ctrl+Y", "Copy last message"},
	{"Ctrl+C", "Quit"},
}

// Banner is the greeting box. Once hidden it stays hidden.
type Banner struct {
	visible bool
	styles  styles.Styles
}

// New returns a visible banner.
func New() *Banner {
	return &Banner{visible: true, styles: styles.New(true)}
}

// SetStyles applies a theme.
func (b *Banner) SetStyles(st styles.Styles) {
	b.styles = st
}

// Hide hides the banner. Hiding a hidden banner is a no-op.
func (b *Banner) Hide() {
	b.visible = false
}

// IsVisible reports whether the banner is shown.
func (b *Banner) IsVisible() bool {
	return b.visible
}

// Height returns the number of rows View(width) occupies.
func (b *Banner) Height(width int) int {
	if !b.visible {
		return 0
	}
	return strings.Count(b.View(width), "\n") + 1
}

// View renders the banner box no wider than width cells.
func (b *Banner) View(width int) string {
	if !b.visible {
		return ""
	}
	boxWidth := 44
	if width-2 < boxWidth {
		boxWidth = width - 2
	}
	if boxWidth < 20 {
		boxWidth = 20
	}

	border := b.styles.Separator
	makeLine := func(content string, visualWidth int) string {
		pad := boxWidth - visualWidth
		if pad < 0 {
			pad = 0
		}
		return border.Render("│") + content + strings.Repeat(" ", pad) + border.Render("│")
	}
	centered := func(text string, render func(...string) string) string {
		text = utils.TruncateToWidth(text, boxWidth-2)
		w := runewidth.StringWidth(text)
		left := (boxWidth - w) / 2
		return makeLine(strings.Repeat(" ", left)+render(text), left+w)
	}

	lines := []string{
		border.Render("╭" + strings.Repeat("─", boxWidth) + "╮"),
		centered(Title, b.styles.Title.Render),
		centered(Subtitle, b.styles.Text.Render),
		makeLine("", 0),
	}
	for _, s := range shortcuts {
		key := fmt.Sprintf("  %-8s", s.key)
		desc := utils.TruncateToWidth(s.desc, boxWidth-runewidth.StringWidth(key))
		lines = append(lines, makeLine(b.styles.Key.Render(key)+b.styles.Text.Render(desc),
			runewidth.StringWidth(key)+runewidth.StringWidth(desc)))
	}
	lines = append(lines, makeLine("", 0))
	lines = append(lines, centered(version.Summary(), b.styles.Muted.Render))
	lines = append(lines, border.Render("╰"+strings.Repeat("─", boxWidth)+"╯"))

	return strings.Join(lines, "\n")
}
