// Package tui provides an interactive terminal user interface for officepdf.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Orchestrator runs conversions. The TUI subscribes to it for the
	// lifetime of the program.
	Orchestrator driving.ConversionOrchestrator

	// History lists past conversions. Optional.
	History driving.HistoryService

	// Settings manages the theme and conversion defaults.
	Settings driving.SettingsService

	// Formats restricts the file picker. Empty means every known format.
	Formats []domain.Format

	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Orchestrator == nil {
		return ErrMissingOrchestrator
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
