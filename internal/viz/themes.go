package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Border lipgloss.Color
}

var (
	ThemeVoid = Theme{
		Name:   "void",
		Accent: lipgloss.Color("#4cc9f0"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666666"),
		Border: lipgloss.Color("#333344"),
	}

	ThemeEmber = Theme{
		Name:   "ember",
		Accent: lipgloss.Color("#ff6b6b"),
		Text:   lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Border: lipgloss.Color("#2d1b2e"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
		Border: lipgloss.Color("#003300"),
	}

	Themes = []Theme{ThemeVoid, ThemeEmber, ThemeRetroGreen}
)

// GetTheme returns a theme by name, falling back to void.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeVoid
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeVoid
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// AccentColor is the theme accent as a colour for canvas overlays.
func (t Theme) AccentColor() colorful.Color {
	c, err := colorful.Hex(string(t.Accent))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}
