package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/officepdf/internal/core/domain"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertCmd_WritesNextToSource(t *testing.T) {
	conv := &mockConversionService{pdf: []byte("%PDF-1.4")}
	buf := setupTestServices(t, &Services{Conversion: conv})
	dir := t.TempDir()
	src := writeTestFile(t, dir, "report.docx", "content")

	err := execute(t, t.TempDir(), "convert", src)

	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Contains(t, buf.String(), "Converting report.docx (7 B)")
	assert.Contains(t, buf.String(), "Saved "+filepath.Join(dir, "report.pdf"))
	assert.Contains(t, buf.String(), "in 250ms")

	require.Len(t, conv.opts, 1)
	assert.Equal(t, domain.ConversionOptions{Quality: domain.QualityMedium}, conv.opts[0])
	assert.Equal(t, "report.docx", conv.files[0].Name)
}

func TestConvertCmd_RefusesOverwrite(t *testing.T) {
	conv := &mockConversionService{pdf: []byte("new")}
	setupTestServices(t, &Services{Conversion: conv})
	dir := t.TempDir()
	src := writeTestFile(t, dir, "report.docx", "content")
	existing := writeTestFile(t, dir, "report.pdf", "old")

	err := execute(t, t.TempDir(), "convert", src)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --force to overwrite")
	assert.Empty(t, conv.opts, "nothing is converted")

	require.NoError(t, execute(t, t.TempDir(), "convert", src, "--force"))
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestConvertCmd_OutputDirectory(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{pdf: []byte("x")}})
	src := writeTestFile(t, t.TempDir(), "budget.xlsx", "content")
	out := filepath.Join(t.TempDir(), "pdfs") + string(os.PathSeparator)

	require.NoError(t, execute(t, t.TempDir(), "convert", src, "-o", out))

	_, err := os.Stat(filepath.Join(out, "budget.pdf"))
	assert.NoError(t, err)
}

func TestConvertCmd_AskPassword(t *testing.T) {
	conv := &mockConversionService{pdf: []byte("x")}
	buf := setupTestServices(t, &Services{Conversion: conv})
	rootCmd.SetIn(strings.NewReader("s3cret\n"))
	src := writeTestFile(t, t.TempDir(), "slides.pptx", "content")

	require.NoError(t, execute(t, t.TempDir(), "convert", src, "--ask-password"))

	require.Len(t, conv.opts, 1)
	assert.Equal(t, "s3cret", conv.opts[0].Password)
	assert.Contains(t, buf.String(), "password protected")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestConvertCmd_AskPassword_Empty(t *testing.T) {
	conv := &mockConversionService{pdf: []byte("x")}
	setupTestServices(t, &Services{Conversion: conv})
	rootCmd.SetIn(strings.NewReader("\n"))
	src := writeTestFile(t, t.TempDir(), "slides.pptx", "content")

	err := execute(t, t.TempDir(), "convert", src, "--ask-password")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, conv.opts)
}

func TestConvertCmd_PasswordFlagsExclusive(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{}})
	src := writeTestFile(t, t.TempDir(), "report.docx", "content")

	err := execute(t, t.TempDir(), "convert", src, "-p", "a", "--ask-password")

	require.Error(t, err)
}

func TestConvertCmd_InvalidQuality(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{}})
	src := writeTestFile(t, t.TempDir(), "report.docx", "content")

	err := execute(t, t.TempDir(), "convert", src, "-q", "ultra")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConvertCmd_QualityLayering(t *testing.T) {
	configDir := t.TempDir()
	writeTestFile(t, configDir, file.FileName, "[conversion]\nquality = \"high\"\n")

	t.Run("config file", func(t *testing.T) {
		conv := &mockConversionService{pdf: []byte("x")}
		setupTestServices(t, &Services{Conversion: conv})
		src := writeTestFile(t, t.TempDir(), "report.docx", "content")

		require.NoError(t, execute(t, configDir, "convert", src))
		assert.Equal(t, domain.QualityHigh, conv.opts[0].Quality)
	})

	t.Run("environment over config file", func(t *testing.T) {
		t.Setenv("OFFICEPDF_CONVERSION_QUALITY", "low")
		conv := &mockConversionService{pdf: []byte("x")}
		setupTestServices(t, &Services{Conversion: conv})
		src := writeTestFile(t, t.TempDir(), "report.docx", "content")

		require.NoError(t, execute(t, configDir, "convert", src))
		assert.Equal(t, domain.QualityLow, conv.opts[0].Quality)
	})

	t.Run("flag over environment", func(t *testing.T) {
		t.Setenv("OFFICEPDF_CONVERSION_QUALITY", "low")
		conv := &mockConversionService{pdf: []byte("x")}
		setupTestServices(t, &Services{Conversion: conv})
		src := writeTestFile(t, t.TempDir(), "report.docx", "content")

		require.NoError(t, execute(t, configDir, "convert", src, "-q", "medium"))
		assert.Equal(t, domain.QualityMedium, conv.opts[0].Quality)
	})
}

func TestConvertCmd_ValidationFailureListsFormats(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{err: domain.ErrValidation}})
	src := writeTestFile(t, t.TempDir(), "notes.txt", "content")

	err := execute(t, t.TempDir(), "convert", src)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "supported: .docx, .xls")
}

func TestConvertCmd_Cancelled(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{err: domain.ErrCancelled}})
	src := writeTestFile(t, t.TempDir(), "report.docx", "content")

	err := execute(t, t.TempDir(), "convert", src)

	require.EqualError(t, err, "conversion cancelled")
}

func TestConvertCmd_MissingFile(t *testing.T) {
	setupTestServices(t, &Services{Conversion: &mockConversionService{}})

	err := execute(t, t.TempDir(), "convert", filepath.Join(t.TempDir(), "gone.docx"))

	assert.ErrorIs(t, err, domain.ErrReadFailed)
}

func TestConvertCmd_NotConfigured(t *testing.T) {
	setupTestServices(t, nil)

	err := execute(t, t.TempDir(), "convert", "report.docx")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversion service not configured")
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, "1 page", pageCount(1))
	assert.Equal(t, "3 pages", pageCount(3))
}
