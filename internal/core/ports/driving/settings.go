package driving

import "github.com/custodia-labs/officepdf/internal/core/domain"

// SettingsService manages user preferences.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Theme returns the stored theme, or the default if none is stored.
	Theme() domain.Theme

	// SetTheme persists the theme preference.
	SetTheme(theme domain.Theme) error

	// ToggleTheme flips and persists the theme, returning the new value.
	ToggleTheme() (domain.Theme, error)

	// SetQuality persists the default conversion quality.
	SetQuality(q domain.Quality) error

	// SetOutputDir persists the default output directory.
	SetOutputDir(dir string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
