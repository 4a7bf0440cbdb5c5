package domain

import "time"

// Theme is the persisted colour scheme preference.
type Theme string

// Available themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when no preference has been stored.
const DefaultTheme = ThemeLight

// IsValid returns true if the theme is recognised.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// String returns the string representation.
func (t Theme) String() string {
	return string(t)
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ProgressSettings tunes the synthetic progress ticker.
type ProgressSettings struct {
	// Interval between synthetic increments.
	Interval time.Duration

	// Step is the synthetic increment in percentage points.
	Step int

	// Ceiling caps synthetic progress until the outcome is known.
	Ceiling int
}

// DefaultProgressSettings returns the standard ticker configuration.
func DefaultProgressSettings() ProgressSettings {
	return ProgressSettings{
		Interval: 200 * time.Millisecond,
		Step:     5,
		Ceiling:  95,
	}
}

// ConversionSettings are the user's conversion defaults.
type ConversionSettings struct {
	// Quality is the default render profile.
	Quality Quality

	// OutputDir is where PDFs are saved when no path is given.
	// Empty means next to the source file.
	OutputDir string
}

// AppSettings holds all persisted user preferences.
type AppSettings struct {
	Theme       Theme
	Conversion  ConversionSettings
	Progress    ProgressSettings
	HistoryKeep int
}

// DefaultAppSettings returns settings with all defaults applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Theme: DefaultTheme,
		Conversion: ConversionSettings{
			Quality: DefaultQuality,
		},
		Progress:    DefaultProgressSettings(),
		HistoryKeep: DefaultHistoryKeep,
	}
}
