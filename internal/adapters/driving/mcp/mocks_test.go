package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// mockConversionService is a mock implementation of driving.ConversionService.
type mockConversionService struct {
	pdf  []byte
	err  error
	opts []domain.ConversionOptions
}

func (m *mockConversionService) Convert(
	_ context.Context,
	file domain.SourceFile,
	opts domain.ConversionOptions,
	_ func(domain.ProgressEvent),
) (*domain.ConversionOutcome, error) {
	m.opts = append(m.opts, opts)
	start := time.Now()
	if m.err != nil {
		failure := domain.NewFailure(m.err)
		return &domain.ConversionOutcome{RequestID: "req-1", Failure: failure}, failure
	}
	return &domain.ConversionOutcome{
		RequestID:  "req-1",
		Success:    &domain.Success{PDF: m.pdf, Filename: domain.OutputFilename(file.Name)},
		StartedAt:  start,
		FinishedAt: start.Add(250 * time.Millisecond),
	}, nil
}

func (m *mockConversionService) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX, domain.FormatXLS}
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.ConversionRecord
	err     error
	limit   int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.ConversionRecord, error) {
	m.limit = limit
	return m.records, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.ConversionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Theme() domain.Theme { return m.settings.Theme }

func (m *mockSettingsService) SetTheme(theme domain.Theme) error {
	m.settings.Theme = theme
	return nil
}

func (m *mockSettingsService) ToggleTheme() (domain.Theme, error) {
	m.settings.Theme = m.settings.Theme.Toggle()
	return m.settings.Theme, nil
}

func (m *mockSettingsService) SetQuality(q domain.Quality) error {
	m.settings.Conversion.Quality = q
	return nil
}

func (m *mockSettingsService) SetOutputDir(dir string) error {
	m.settings.Conversion.OutputDir = dir
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
