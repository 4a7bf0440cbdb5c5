package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/officepdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/officepdf/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/cli"
	"github.com/custodia-labs/officepdf/internal/converters"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
	"github.com/custodia-labs/officepdf/internal/core/services"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// bootstrap wires adapters and services for one command invocation.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	logger.Section("Startup")
	checkWritable("config", opts.ConfigDir)

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	var (
		historyStore driven.HistoryStore
		closers      []func() error
	)
	if opts.NoHistory {
		logger.Debug("History kept in memory for this run")
		historyStore = memory.NewHistoryStore()
	} else {
		checkWritable("data", opts.DataDir)
		store, err := sqlite.NewStore(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		logger.Debug("History database: %s", store.Path())
		historyStore = store.HistoryStore()
		closers = append(closers, store.Close)
	}

	converter := converters.NewDefault("officepdf " + cli.Version())
	validator := services.NewValidator()
	recorder := services.NewHistoryRecorder(historyStore, opts.Settings.HistoryKeep)
	progress := opts.Settings.Progress

	return &cli.Services{
		Conversion: services.NewConversionService(validator, converter, progress, recorder),
		History:    services.NewHistoryService(historyStore),
		Settings:   settingsService,
		NewOrchestrator: func() driving.ConversionOrchestrator {
			return services.NewConversionOrchestrator(validator, converter, progress, recorder)
		},
		ConfigWatcher: configStore,
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// checkWritable warns when dir cannot be created or written. Conversions
// still work; only persisting settings or history would fail.
func checkWritable(name, dir string) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		logger.Warn("The %s directory %s cannot be created: %v", name, dir, err)
		return
	}
	f, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		logger.Warn("The %s directory %s is not writable: %v", name, dir, err)
		return
	}
	f.Close()
	os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup
}
