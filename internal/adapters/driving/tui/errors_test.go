package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errors := []error{
		ErrMissingOrchestrator,
		ErrMissingSettingsService,
		ErrInvalidPorts,
	}

	seen := make(map[string]bool)
	for _, err := range errors {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingOrchestrator_Message(t *testing.T) {
	assert.Contains(t, ErrMissingOrchestrator.Error(), "conversion orchestrator")
}

func TestErrMissingSettingsService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSettingsService.Error(), "settings service")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
