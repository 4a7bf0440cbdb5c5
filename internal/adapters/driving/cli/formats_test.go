package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

func TestFormatsCmd(t *testing.T) {
	buf := setupTestServices(t, &Services{Conversion: &mockConversionService{}})

	require.NoError(t, execute(t, t.TempDir(), "formats"))

	out := buf.String()
	assert.Contains(t, out, "EXTENSION")
	assert.Contains(t, out, domain.FormatDOCX.Extension())
	assert.Contains(t, out, domain.FormatDOCX.MIMEType())
	assert.Contains(t, out, "Word Document")
	assert.Contains(t, out, domain.FormatXLS.Extension())
	assert.NotContains(t, out, "..")
}

func TestFormatsCmd_NotConfigured(t *testing.T) {
	setupTestServices(t, nil)

	err := execute(t, t.TempDir(), "formats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversion service not configured")
}
