package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/services"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// envPrefix is the prefix of environment overrides, e.g.
// OFFICEPDF_CONVERSION_QUALITY for conversion.quality.
const envPrefix = "OFFICEPDF"

// newRuntimeConfig layers flags over OFFICEPDF_* environment variables over
// the config file over defaults. A missing config file is not an error.
func newRuntimeConfig(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configFile)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		logger.Debug("No config file at %s, using defaults", configFile)
	} else {
		logger.Debug("Using config file: %s", v.ConfigFileUsed())
	}

	if f := convertCmd.Flags().Lookup("quality"); f != nil {
		if err := v.BindPFlag(services.KeyQuality, f); err != nil {
			return nil, fmt.Errorf("failed to bind quality flag: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := domain.DefaultAppSettings()
	v.SetDefault(services.KeyTheme, d.Theme.String())
	v.SetDefault(services.KeyQuality, d.Conversion.Quality.String())
	v.SetDefault(services.KeyOutputDir, d.Conversion.OutputDir)
	v.SetDefault(services.KeyProgressIntervalMS, int(d.Progress.Interval/time.Millisecond))
	v.SetDefault(services.KeyProgressStep, d.Progress.Step)
	v.SetDefault(services.KeyHistoryKeep, d.HistoryKeep)
}

// settingsFromConfig reads the effective settings. Invalid values fall
// back to the defaults with a warning.
func settingsFromConfig(v *viper.Viper) domain.AppSettings {
	s := domain.DefaultAppSettings()
	if v == nil {
		return s
	}

	if theme := domain.Theme(v.GetString(services.KeyTheme)); theme.IsValid() {
		s.Theme = theme
	} else {
		logger.Warn("Ignoring unknown theme %q", theme)
	}
	if q := domain.Quality(v.GetString(services.KeyQuality)); q.IsValid() {
		s.Conversion.Quality = q
	} else {
		logger.Warn("Ignoring unknown quality %q", q)
	}
	s.Conversion.OutputDir = v.GetString(services.KeyOutputDir)

	if ms := v.GetInt(services.KeyProgressIntervalMS); ms > 0 {
		s.Progress.Interval = time.Duration(ms) * time.Millisecond
	}
	if step := v.GetInt(services.KeyProgressStep); step > 0 {
		s.Progress.Step = step
	}
	if keep := v.GetInt(services.KeyHistoryKeep); keep > 0 {
		s.HistoryKeep = keep
	}
	return s
}

// effectiveSettings returns the settings resolved for this invocation.
func effectiveSettings() domain.AppSettings {
	return settingsFromConfig(runtimeConfig)
}
