package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Version returns the build version.
func Version() string {
	return version
}

// annotationNoServices marks commands that run without building services.
const annotationNoServices = "officepdf/no-services"

// Options are the global settings resolved before services are built.
type Options struct {
	// ConfigDir holds config.toml.
	ConfigDir string

	// DataDir holds the history database.
	DataDir string

	// NoHistory keeps history in memory for this process only.
	NoHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// Settings are the effective settings after flag, environment and
	// file layering.
	Settings domain.AppSettings
}

// Services are the driving ports used by the commands.
type Services struct {
	Conversion driving.ConversionService
	History    driving.HistoryService
	Settings   driving.SettingsService

	// NewOrchestrator creates a long-lived orchestrator for the TUI.
	NewOrchestrator func() driving.ConversionOrchestrator

	// ConfigWatcher reports external edits to the config file. May be nil.
	ConfigWatcher driven.ConfigWatcher

	// Close releases resources once the command returns. May be nil.
	Close func() error
}

// Bootstrap builds services from the resolved options.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
	flagNoHistory bool
)

var (
	bootstrap     Bootstrap
	runtimeConfig *viper.Viper
	closeServices func() error

	conversionService driving.ConversionService
	historyService    driving.HistoryService
	settingsService   driving.SettingsService
	newOrchestrator   func() driving.ConversionOrchestrator
	configWatcher     driven.ConfigWatcher
)

var rootCmd = &cobra.Command{
	Use:   "officepdf",
	Short: "Convert office documents to PDF",
	Long: `officepdf converts Word, Excel and PowerPoint documents to PDF.

Both the modern formats (docx, xlsx, pptx) and the legacy binary formats
(doc, xls, ppt) are accepted. Output can be protected with a password.

Settings are read from ~/.officepdf/config.toml and may be overridden by
OFFICEPDF_* environment variables, for example OFFICEPDF_CONVERSION_QUALITY.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.officepdf)")
	pf.StringVar(&flagDataDir, "data-dir", "", "data directory (default <config-dir>/data)")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not persist conversion history")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	conversionService = s.Conversion
	historyService = s.History
	settingsService = s.Settings
	newOrchestrator = s.NewOrchestrator
	configWatcher = s.ConfigWatcher
	closeServices = s.Close
}

// Execute runs the root command. b is called once flags are parsed.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardown(); closeErr != nil {
		logger.Warn("Failed to close services: %v", closeErr)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	opts, err := resolveOptions()
	if err != nil {
		return err
	}

	cfg, err := newRuntimeConfig(filepath.Join(opts.ConfigDir, file.FileName))
	if err != nil {
		return err
	}
	runtimeConfig = cfg
	opts.Settings = settingsFromConfig(cfg)

	if bootstrap == nil || cmd.Annotations[annotationNoServices] != "" {
		return nil
	}

	services, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(services)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	closer := closeServices
	closeServices = nil
	return closer()
}

func resolveOptions() (Options, error) {
	opts := Options{
		ConfigDir: flagConfigDir,
		DataDir:   flagDataDir,
		NoHistory: flagNoHistory,
		Verbose:   flagVerbose,
	}
	if opts.ConfigDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return opts, err
		}
		opts.ConfigDir = dir
	}
	if opts.DataDir == "" {
		opts.DataDir = filepath.Join(opts.ConfigDir, "data")
	}
	return opts, nil
}

// errNotConfigured builds the error returned when a service is missing.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
