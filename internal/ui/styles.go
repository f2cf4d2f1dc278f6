package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	noteStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1F6F43", Dark: "#7EE0A8"})

	offPitchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#A33A3A", Dark: "#F08A8A"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
)

// Theme forces light or dark adaptive colours, or leaves detection to the
// terminal.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps unknown names to ThemeAuto.
func ParseTheme(s string) Theme {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s)
	}
	return ThemeAuto
}

// Next cycles auto, dark, light.
func (t Theme) Next() Theme {
	switch t {
	case ThemeAuto:
		return ThemeDark
	case ThemeDark:
		return ThemeLight
	default:
		return ThemeAuto
	}
}

var detectedDark = sync.OnceValue(lipgloss.HasDarkBackground)

func applyTheme(t Theme) {
	auto := detectedDark()
	switch t {
	case ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	case ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(auto)
	}
}
