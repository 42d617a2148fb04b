// Package utils holds width helpers shared by the chat components.
package utils

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// TruncateToWidth cuts text to width cells, ending in "..." when cut.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return TrimToWidth(text, width)
	}
	return TrimToWidth(text, width-3) + "..."
}

// TrimToWidth cuts text to width cells.
func TrimToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	w := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String()
}

// PadStyled right-pads styled text with spaces to width cells.
func PadStyled(text string, width int) string {
	if width <= 0 {
		return text
	}
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// Wrap breaks plain text into lines of at most width cells. Words are kept
// whole unless a single word is wider than the line. Hard line breaks in
// text are preserved.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lineWidth := 0
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		for _, word := range words {
			for _, part := range splitByWidth(word, width) {
				pw := runewidth.StringWidth(part)
				if lineWidth > 0 && lineWidth+1+pw > width {
					flush()
				}
				if lineWidth > 0 {
					line.WriteByte(' ')
					lineWidth++
				}
				line.WriteString(part)
				lineWidth += pw
			}
		}
		flush()
	}
	return lines
}

// Sanitize drops control characters other than newline and tab.
func Sanitize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func splitByWidth(text string, width int) []string {
	var parts []string
	var sb strings.Builder
	w := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && w > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
			w = 0
		}
		sb.WriteRune(r)
		w += rw
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}
