// Package testutils builds Bubble Tea v2 key events for component tests.
package testutils

import (
	tea "charm.land/bubbletea/v2"
)

// NewKeyPressMsg creates a KeyPressMsg for a special key code.
func NewKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// NewTextKeyPressMsg creates a KeyPressMsg carrying typed text.
func NewTextKeyPressMsg(text string) tea.KeyPressMsg {
	if len(text) == 0 {
		return tea.KeyPressMsg(tea.Key{})
	}
	r := []rune(text)[0]
	return tea.KeyPressMsg(tea.Key{
		Code: r,
		Text: text,
	})
}

// NewCtrlKeyPressMsg creates a Ctrl+<char> KeyPressMsg.
func NewCtrlKeyPressMsg(char rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{
		Code: char,
		Mod:  tea.ModCtrl,
	})
}

// TypeString returns one KeyPressMsg per rune of s.
func TypeString(s string) []tea.KeyPressMsg {
	msgs := make([]tea.KeyPressMsg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, NewTextKeyPressMsg(string(r)))
	}
	return msgs
}

var (
	TestKeyUp        = NewKeyPressMsg(tea.KeyUp)
	TestKeyDown      = NewKeyPressMsg(tea.KeyDown)
	TestKeyLeft      = NewKeyPressMsg(tea.KeyLeft)
	TestKeyRight     = NewKeyPressMsg(tea.KeyRight)
	TestKeyEnter     = NewKeyPressMsg(tea.KeyEnter)
	TestKeyTab       = NewKeyPressMsg(tea.KeyTab)
	TestKeyEsc       = NewKeyPressMsg(tea.KeyEscape)
	TestKeyBackspace = NewKeyPressMsg(tea.KeyBackspace)
	TestKeyPgUp      = NewKeyPressMsg(tea.KeyPgUp)
	TestKeyPgDown    = NewKeyPressMsg(tea.KeyPgDown)
	TestKeyHome      = NewKeyPressMsg(tea.KeyHome)
	TestKeyEnd       = NewKeyPressMsg(tea.KeyEnd)
)

var (
	TestKeyCtrlC = NewCtrlKeyPressMsg('c')
	TestKeyCtrlT = NewCtrlKeyPressMsg('t')
	TestKeyCtrlX = NewCtrlKeyPressMsg('x')
	TestKeyCtrlY = NewCtrlKeyPressMsg('y')
)
