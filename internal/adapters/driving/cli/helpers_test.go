package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// mockConversionService implements driving.ConversionService for testing.
type mockConversionService struct {
	pdf   []byte
	err   error
	files []domain.SourceFile
	opts  []domain.ConversionOptions
}

func (m *mockConversionService) Convert(
	_ context.Context,
	file domain.SourceFile,
	opts domain.ConversionOptions,
	progress func(domain.ProgressEvent),
) (*domain.ConversionOutcome, error) {
	m.files = append(m.files, file)
	m.opts = append(m.opts, opts)
	start := time.Now()
	if progress != nil {
		progress(domain.ProgressEvent{RequestID: "req-1", Percent: domain.ProgressAccepted})
	}
	if m.err != nil {
		failure := domain.NewFailure(m.err)
		return &domain.ConversionOutcome{RequestID: "req-1", Failure: failure}, failure
	}
	if progress != nil {
		progress(domain.ProgressEvent{RequestID: "req-1", Percent: domain.ProgressComplete})
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

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	records []domain.ConversionRecord
	err     error
	limit   int
	cleared bool
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.ConversionRecord, error) {
	m.limit = limit
	return m.records, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.ConversionRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, m.err
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) Theme() domain.Theme { return m.settings.Theme }

func (m *mockSettingsService) SetTheme(theme domain.Theme) error {
	if m.err != nil {
		return m.err
	}
	m.settings.Theme = theme
	return nil
}

func (m *mockSettingsService) ToggleTheme() (domain.Theme, error) {
	m.settings.Theme = m.settings.Theme.Toggle()
	return m.settings.Theme, m.err
}

func (m *mockSettingsService) SetQuality(q domain.Quality) error {
	m.settings.Conversion.Quality = q
	return m.err
}

func (m *mockSettingsService) SetOutputDir(dir string) error {
	m.settings.Conversion.OutputDir = dir
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// resetFlags restores every flag to its default. Cobra keeps flag values
// between Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupTestServices installs services for one test and returns the
// buffer that captures command output.
func setupTestServices(t *testing.T, s *Services) *bytes.Buffer {
	t.Helper()
	resetFlags(rootCmd)
	SetServices(s)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	t.Cleanup(func() {
		SetServices(nil)
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		bootstrap = nil
		runtimeConfig = nil
	})
	return buf
}

// execute runs the root command with an isolated config directory.
func execute(t *testing.T, configDir string, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
	return rootCmd.Execute()
}
