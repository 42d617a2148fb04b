// Package identity derives the per-session user identifier from a display name.
package identity

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrEmptyName is returned when the trimmed display name is empty.
var ErrEmptyName = errors.New("display name is empty")

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Generator derives user identifiers using its clock.
type Generator struct {
	now Clock
}

// NewGenerator returns a generator backed by clock, or time.Now when clock is nil.
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{now: clock}
}

// Generate builds `<slug>-<unix millis>` from the display name.
func (g *Generator) Generate(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return Slug(trimmed) + "-" + strconv.FormatInt(g.now().UnixMilli(), 10), nil
}

// Generate derives an identifier using the wall clock.
func Generate(name string) (string, error) {
	return NewGenerator(nil).Generate(name)
}

// Slug lower-cases name and collapses each Unicode whitespace run to a single hyphen.
// Surrounding whitespace is kept as a hyphen, so callers trim first.
func Slug(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
