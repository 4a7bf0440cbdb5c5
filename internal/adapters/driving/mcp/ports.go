package mcp

import (
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversion runs conversions.
	Conversion driving.ConversionService

	// History lists past conversions. Optional.
	History driving.HistoryService

	// Settings supplies the default quality and output directory. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Conversion == nil {
		return ErrMissingConversionService
	}
	return nil
}
