package testutils

import (
	"strings"

	"chatbox/pkg/version"

	"github.com/charmbracelet/x/ansi"
)

// VersionPlaceholder replaces the line carrying the build version in golden output.
const VersionPlaceholder = "<version>"

// NormalizeView strips styling and trailing spaces and hides the build
// version so golden files do not depend on ldflags or terminal colors.
func NormalizeView(view string) string {
	view = strings.ReplaceAll(ansi.Strip(view), "\r", "")
	summary := version.Summary()

	lines := strings.Split(view, "\n")
	for i, line := range lines {
		if strings.Contains(line, summary) {
			lines[i] = VersionPlaceholder
			continue
		}
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
