package prefs

import "fmt"

// Theme is the persisted display flag.
type Theme string

const (
	LightMode Theme = "light_mode"
	DarkMode  Theme = "dark_mode"
)

// IsLight reports whether the theme is light.
func (t Theme) IsLight() bool {
	return t == LightMode
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t.IsLight() {
		return DarkMode
	}
	return LightMode
}

// ToggleLabel is the label of the control that switches away from t.
func (t Theme) ToggleLabel() string {
	return string(t.Toggled())
}

// LoadTheme reads the stored theme. Anything other than light_mode is dark.
func LoadTheme(s Store) Theme {
	if v, ok := s.Get(ThemeKey); ok && Theme(v) == LightMode {
		return LightMode
	}
	return DarkMode
}

// SaveTheme persists t.
func SaveTheme(s Store, t Theme) error {
	if err := s.Set(ThemeKey, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
