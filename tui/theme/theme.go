// Package theme maps the user's theme setting onto lipgloss styles.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/focus/pkg/models"
)

// --- Kanagawa Dragon (dark) palette ---
const (
	kanagawaDarkGreen     = "#98BB6C"
	kanagawaDarkYellow    = "#FF9E3B"
	kanagawaDarkRed       = "#FF5D62"
	kanagawaDarkCyan      = "#7E9CD8"
	kanagawaDarkLightText = "#DCD7BA"
	kanagawaDarkMutedText = "#727169"
	kanagawaDarkBorder    = "#363646"
)

// --- Kanagawa Wave (light-inspired) palette ---
const (
	kanagawaLightGreen     = "#4E7C5A"
	kanagawaLightYellow    = "#A68A64"
	kanagawaLightRed       = "#C34043"
	kanagawaLightCyan      = "#5B8BBE"
	kanagawaLightLightText = "#2B2F42"
	kanagawaLightMutedText = "#6C7086"
	kanagawaLightBorder    = "#B5BDC5"
)

// Colors encapsulates the palette used by a theme. lipgloss.TerminalColor
// allows a mix of adaptive and static colors.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
}

// Theme holds the styles used by the focus views.
type Theme struct {
	Colors Colors

	Title    lipgloss.Style
	Timer    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Box      lipgloss.Style

	// Priority dots keyed by task priority.
	Priority map[string]lipgloss.Style
}

func darkColors() Colors {
	return Colors{
		Green:     lipgloss.Color(kanagawaDarkGreen),
		Yellow:    lipgloss.Color(kanagawaDarkYellow),
		Red:       lipgloss.Color(kanagawaDarkRed),
		Cyan:      lipgloss.Color(kanagawaDarkCyan),
		Text:      lipgloss.Color(kanagawaDarkLightText),
		MutedText: lipgloss.Color(kanagawaDarkMutedText),
		Border:    lipgloss.Color(kanagawaDarkBorder),
	}
}

func lightColors() Colors {
	return Colors{
		Green:     lipgloss.Color(kanagawaLightGreen),
		Yellow:    lipgloss.Color(kanagawaLightYellow),
		Red:       lipgloss.Color(kanagawaLightRed),
		Cyan:      lipgloss.Color(kanagawaLightCyan),
		Text:      lipgloss.Color(kanagawaLightLightText),
		MutedText: lipgloss.Color(kanagawaLightMutedText),
		Border:    lipgloss.Color(kanagawaLightBorder),
	}
}

// autoColors follows the terminal background.
func autoColors() Colors {
	adaptive := func(light, dark string) lipgloss.TerminalColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
	return Colors{
		Green:     adaptive(kanagawaLightGreen, kanagawaDarkGreen),
		Yellow:    adaptive(kanagawaLightYellow, kanagawaDarkYellow),
		Red:       adaptive(kanagawaLightRed, kanagawaDarkRed),
		Cyan:      adaptive(kanagawaLightCyan, kanagawaDarkCyan),
		Text:      adaptive(kanagawaLightLightText, kanagawaDarkLightText),
		MutedText: adaptive(kanagawaLightMutedText, kanagawaDarkMutedText),
		Border:    adaptive(kanagawaLightBorder, kanagawaDarkBorder),
	}
}

// New returns the theme for a settings theme name. Unknown names use the
// light theme.
func New(name string) *Theme {
	var c Colors
	switch name {
	case "dark":
		c = darkColors()
	case "auto":
		c = autoColors()
	default:
		c = lightColors()
	}

	return &Theme{
		Colors:   c,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(c.Cyan),
		Timer:    lipgloss.NewStyle().Bold(true).Foreground(c.Text),
		Muted:    lipgloss.NewStyle().Foreground(c.MutedText),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(c.Cyan),
		Done:     lipgloss.NewStyle().Strikethrough(true).Foreground(c.MutedText),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(1, 4),
		Priority: map[string]lipgloss.Style{
			"red":    lipgloss.NewStyle().Foreground(c.Red),
			"yellow": lipgloss.NewStyle().Foreground(c.Yellow),
			"green":  lipgloss.NewStyle().Foreground(c.Green),
		},
	}
}

// ForSettings returns the theme selected in s.
func ForSettings(s models.Settings) *Theme {
	return New(s.Theme)
}
