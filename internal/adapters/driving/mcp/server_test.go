package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil conversion service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingConversionService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Conversion: &mockConversionService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		var ports *Ports
		assert.ErrorIs(t, ports.Validate(), ErrMissingConversionService)
	})

	t.Run("conversion only is valid", func(t *testing.T) {
		ports := &Ports{Conversion: &mockConversionService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Conversion: &mockConversionService{},
			History:    &mockHistoryService{},
			Settings:   &mockSettingsService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
