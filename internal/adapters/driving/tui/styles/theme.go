// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Name is the persisted preference this palette implements.
	Name domain.Theme

	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Background is the background colour.
	Background lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DarkTheme returns the palette for dark terminals.
func DarkTheme() *Theme {
	return &Theme{
		Name:       domain.ThemeDark,
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Background: lipgloss.Color("#1E1E2E"), // Dark gray
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
		Bar:        lipgloss.Color("#181825"),
	}
}

// LightTheme returns the palette for light terminals.
func LightTheme() *Theme {
	return &Theme{
		Name:       domain.ThemeLight,
		Primary:    lipgloss.Color("#6D28D9"), // Deep purple
		Secondary:  lipgloss.Color("#0E7490"), // Teal
		Background: lipgloss.Color("#FFFFFF"),
		Foreground: lipgloss.Color("#1F2937"), // Charcoal
		Muted:      lipgloss.Color("#6B7280"), // Gray
		Success:    lipgloss.Color("#15803D"), // Green
		Warning:    lipgloss.Color("#B45309"), // Amber
		Error:      lipgloss.Color("#B91C1C"), // Red
		Border:     lipgloss.Color("#D1D5DB"), // Light border
		Bar:        lipgloss.Color("#E5E7EB"),
	}
}

// DefaultTheme returns the palette for domain.DefaultTheme.
func DefaultTheme() *Theme {
	return ThemeFor(domain.DefaultTheme)
}

// ThemeFor returns the palette for a theme preference. Unknown values
// get the default palette.
func ThemeFor(t domain.Theme) *Theme {
	switch t {
	case domain.ThemeDark:
		return DarkTheme()
	case domain.ThemeLight:
		return LightTheme()
	default:
		return ThemeFor(domain.DefaultTheme)
	}
}

// Styles contains pre-configured lipgloss styles.
//
// Views share one *Styles; Apply restyles all of them at once.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// Banner frames an error with a retry hint.
	Banner lipgloss.Style

	// InputField style for input areas.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style

	// Border style for bordered containers.
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	s := &Styles{}
	s.Apply(theme)
	return s
}

// Apply rebuilds every style from theme in place.
func (s *Styles) Apply(theme *Theme) {
	if theme == nil {
		theme = DefaultTheme()
	}

	s.theme = theme

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	s.Subtitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Secondary)

	s.Normal = lipgloss.NewStyle().
		Foreground(theme.Foreground)

	s.Muted = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Background).
		Background(theme.Primary)

	s.Error = lipgloss.NewStyle().
		Foreground(theme.Error)

	s.Success = lipgloss.NewStyle().
		Foreground(theme.Success)

	s.Warning = lipgloss.NewStyle().
		Foreground(theme.Warning)

	s.Banner = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Error).
		Foreground(theme.Error).
		Padding(0, 1)

	s.InputField = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Background(theme.Bar).
		Padding(0, 1)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.Border = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// ForTheme returns styles for a theme preference.
func ForTheme(t domain.Theme) *Styles {
	return NewStyles(ThemeFor(t))
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
