package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/services"
)

func TestSettingsFromConfig_Nil(t *testing.T) {
	assert.Equal(t, domain.DefaultAppSettings(), settingsFromConfig(nil))
}

func TestSettingsFromConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, domain.DefaultAppSettings(), settingsFromConfig(v))
}

func TestSettingsFromConfig_Values(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set(services.KeyTheme, "dark")
	v.Set(services.KeyQuality, "low")
	v.Set(services.KeyOutputDir, "/tmp/pdfs")
	v.Set(services.KeyProgressIntervalMS, 50)
	v.Set(services.KeyProgressStep, 10)
	v.Set(services.KeyHistoryKeep, 7)

	s := settingsFromConfig(v)

	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, domain.QualityLow, s.Conversion.Quality)
	assert.Equal(t, "/tmp/pdfs", s.Conversion.OutputDir)
	assert.Equal(t, 50*time.Millisecond, s.Progress.Interval)
	assert.Equal(t, 10, s.Progress.Step)
	assert.Equal(t, 7, s.HistoryKeep)
}

func TestSettingsFromConfig_InvalidValuesFallBack(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set(services.KeyTheme, "neon")
	v.Set(services.KeyQuality, "ultra")
	v.Set(services.KeyProgressStep, -1)
	v.Set(services.KeyHistoryKeep, 0)

	s := settingsFromConfig(v)
	d := domain.DefaultAppSettings()

	assert.Equal(t, d.Theme, s.Theme)
	assert.Equal(t, d.Conversion.Quality, s.Conversion.Quality)
	assert.Equal(t, d.Progress.Step, s.Progress.Step)
	assert.Equal(t, d.HistoryKeep, s.HistoryKeep)
}

func TestNewRuntimeConfig_MissingFile(t *testing.T) {
	setupTestServices(t, nil)

	v, err := newRuntimeConfig(filepath.Join(t.TempDir(), file.FileName))

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), settingsFromConfig(v))
}

func TestNewRuntimeConfig_ReadsFile(t *testing.T) {
	setupTestServices(t, nil)
	dir := t.TempDir()
	path := writeTestFile(t, dir, file.FileName, "theme = \"dark\"\n\n[history]\nkeep = 12\n")

	v, err := newRuntimeConfig(path)

	require.NoError(t, err)
	s := settingsFromConfig(v)
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, 12, s.HistoryKeep)
}

func TestNewRuntimeConfig_Environment(t *testing.T) {
	setupTestServices(t, nil)
	t.Setenv("OFFICEPDF_THEME", "dark")
	t.Setenv("OFFICEPDF_CONVERSION_OUTPUT_DIR", "/srv/pdf")

	v, err := newRuntimeConfig(filepath.Join(t.TempDir(), file.FileName))

	require.NoError(t, err)
	s := settingsFromConfig(v)
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, "/srv/pdf", s.Conversion.OutputDir)
}

func TestNewRuntimeConfig_MalformedFile(t *testing.T) {
	setupTestServices(t, nil)
	path := writeTestFile(t, t.TempDir(), file.FileName, "theme = [unterminated\n")

	_, err := newRuntimeConfig(path)

	assert.Error(t, err)
}
