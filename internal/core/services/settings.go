package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyTheme              = "theme"
	KeyQuality            = "conversion.quality"
	KeyOutputDir          = "conversion.output_dir"
	KeyProgressIntervalMS = "progress.interval_ms"
	KeyProgressStep       = "progress.step"
	KeyHistoryKeep        = "history.keep"
)

// SettingsService manages user preferences.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Theme: s.Theme(),
		Conversion: domain.ConversionSettings{
			Quality:   s.getQuality(defaults.Conversion.Quality),
			OutputDir: s.configStore.GetString(KeyOutputDir),
		},
		Progress: domain.ProgressSettings{
			Interval: time.Duration(s.getInt(KeyProgressIntervalMS, int(defaults.Progress.Interval/time.Millisecond))) * time.Millisecond,
			Step:     s.getInt(KeyProgressStep, defaults.Progress.Step),
			Ceiling:  defaults.Progress.Ceiling,
		},
		HistoryKeep: s.getInt(KeyHistoryKeep, defaults.HistoryKeep),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if err := s.SetTheme(settings.Theme); err != nil {
		return err
	}
	if err := s.SetQuality(settings.Conversion.Quality); err != nil {
		return err
	}
	if err := s.SetOutputDir(settings.Conversion.OutputDir); err != nil {
		return err
	}
	if err := s.configStore.Set(KeyProgressIntervalMS, int(settings.Progress.Interval/time.Millisecond)); err != nil {
		return fmt.Errorf("save progress interval: %w", err)
	}
	if err := s.configStore.Set(KeyProgressStep, settings.Progress.Step); err != nil {
		return fmt.Errorf("save progress step: %w", err)
	}
	if err := s.configStore.Set(KeyHistoryKeep, settings.HistoryKeep); err != nil {
		return fmt.Errorf("save history keep: %w", err)
	}
	return nil
}

// Theme returns the stored theme, falling back to the default when the
// stored value is missing or unrecognised.
func (s *SettingsService) Theme() domain.Theme {
	theme := domain.Theme(s.configStore.GetString(KeyTheme))
	if !theme.IsValid() {
		return domain.DefaultTheme
	}
	return theme
}

// SetTheme persists the theme preference.
func (s *SettingsService) SetTheme(theme domain.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("%w: theme %q", domain.ErrInvalidInput, theme)
	}
	if err := s.configStore.Set(KeyTheme, theme.String()); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// ToggleTheme flips and persists the theme.
func (s *SettingsService) ToggleTheme() (domain.Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}

// SetQuality persists the default conversion quality.
func (s *SettingsService) SetQuality(q domain.Quality) error {
	if !q.IsValid() {
		return fmt.Errorf("%w: quality %q", domain.ErrInvalidInput, q)
	}
	if err := s.configStore.Set(KeyQuality, q.String()); err != nil {
		return fmt.Errorf("save quality: %w", err)
	}
	return nil
}

// SetOutputDir persists the default output directory.
func (s *SettingsService) SetOutputDir(dir string) error {
	if err := s.configStore.Set(KeyOutputDir, dir); err != nil {
		return fmt.Errorf("save output dir: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getQuality(defaultVal domain.Quality) domain.Quality {
	q := domain.Quality(s.configStore.GetString(KeyQuality))
	if !q.IsValid() {
		return defaultVal
	}
	return q
}
