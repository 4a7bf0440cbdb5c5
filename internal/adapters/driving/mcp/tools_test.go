package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/converters/pdf"
	"github.com/custodia-labs/officepdf/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	return path
}

func TestServer_handleConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the PDF next to the source", func(t *testing.T) {
		dir := t.TempDir()
		conv := &mockConversionService{pdf: []byte("%PDF-1.4")}
		server := newTestServer(t, &Ports{Conversion: conv})

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{Path: writeSource(t, dir, "report.docx")})

		require.NoError(t, err)
		assert.Equal(t, "req-1", output.RequestID)
		assert.Equal(t, filepath.Join(dir, "report.pdf"), output.OutputPath)
		assert.Equal(t, int64(8), output.Size)
		assert.Equal(t, int64(250), output.DurationMS)
		assert.False(t, output.Encrypted)
		data, err := os.ReadFile(output.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
		require.Len(t, conv.opts, 1)
		assert.Equal(t, domain.QualityMedium, conv.opts[0].Quality)
	})

	t.Run("passes password and quality", func(t *testing.T) {
		dir := t.TempDir()
		conv := &mockConversionService{pdf: []byte("%PDF-1.4")}
		server := newTestServer(t, &Ports{Conversion: conv})

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{
			Path:     writeSource(t, dir, "budget.xlsx"),
			Password: "secret",
			Quality:  "HIGH",
		})

		require.NoError(t, err)
		assert.True(t, output.Encrypted)
		assert.Equal(t, domain.ConversionOptions{Password: "secret", Quality: domain.QualityHigh}, conv.opts[0])
	})

	t.Run("counts pages of a password protected PDF", func(t *testing.T) {
		layout := &domain.Layout{Title: "Budget"}
		layout.AddParagraph("Quarterly figures")
		opts := domain.ConversionOptions{Password: "secret"}
		encrypted, err := pdf.NewRenderer("test").Render(ctx, layout, opts, nil)
		require.NoError(t, err)

		dir := t.TempDir()
		conv := &mockConversionService{pdf: encrypted}
		server := newTestServer(t, &Ports{Conversion: conv})

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{
			Path:     writeSource(t, dir, "budget.xlsx"),
			Password: "secret",
		})

		require.NoError(t, err)
		assert.True(t, output.Encrypted)
		assert.Equal(t, 1, output.Pages)
	})

	t.Run("reports output path errors", func(t *testing.T) {
		dir := t.TempDir()
		blocker := writeSource(t, dir, "plain")
		conv := &mockConversionService{pdf: []byte("x")}
		server := newTestServer(t, &Ports{Conversion: conv})

		_, _, err := server.handleConvert(ctx, nil, ConvertInput{
			Path:   writeSource(t, dir, "report.docx"),
			Output: filepath.Join(blocker, "report.pdf"),
		})

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrOutputExists)
		assert.Empty(t, conv.opts, "nothing is converted")
	})

	t.Run("uses configured defaults", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(t.TempDir(), "pdfs")
		settings := &mockSettingsService{settings: domain.DefaultAppSettings()}
		settings.settings.Conversion.Quality = domain.QualityLow
		settings.settings.Conversion.OutputDir = out
		conv := &mockConversionService{pdf: []byte("%PDF-1.4")}
		server := newTestServer(t, &Ports{Conversion: conv, Settings: settings})

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{Path: writeSource(t, dir, "slides.pptx")})

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(out, "slides.pdf"), output.OutputPath)
		assert.Equal(t, domain.QualityLow, conv.opts[0].Quality)
	})

	t.Run("output directory gets the derived name", func(t *testing.T) {
		dir := t.TempDir()
		out := t.TempDir()
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{pdf: []byte("x")}})

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{
			Path:   writeSource(t, dir, "report.docx"),
			Output: out,
		})

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(out, "report.pdf"), output.OutputPath)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "report.pdf")
		conv := &mockConversionService{pdf: []byte("x")}
		server := newTestServer(t, &Ports{Conversion: conv})
		input := ConvertInput{Path: writeSource(t, dir, "report.docx")}

		_, _, err := server.handleConvert(ctx, nil, input)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrOutputExists)
		assert.Contains(t, err.Error(), "already exists")
		assert.Empty(t, conv.opts, "nothing is converted")

		input.Overwrite = true
		_, _, err = server.handleConvert(ctx, nil, input)
		require.NoError(t, err)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}})

		_, _, err := server.handleConvert(ctx, nil, ConvertInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, _, err = server.handleConvert(ctx, nil, ConvertInput{Path: "a.docx", Quality: "ultra"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing file is a read failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}})

		_, _, err := server.handleConvert(ctx, nil, ConvertInput{Path: filepath.Join(t.TempDir(), "gone.docx")})

		assert.ErrorIs(t, err, domain.ErrReadFailed)
	})

	t.Run("conversion failure is returned", func(t *testing.T) {
		dir := t.TempDir()
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{err: domain.ErrValidation}})

		_, _, err := server.handleConvert(ctx, nil, ConvertInput{Path: writeSource(t, dir, "notes.txt")})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, statErr := os.Stat(filepath.Join(dir, "notes.pdf"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestServer_handleListFormats(t *testing.T) {
	server := newTestServer(t, &Ports{Conversion: &mockConversionService{}})

	_, output, err := server.handleListFormats(context.Background(), nil, struct{}{})

	require.NoError(t, err)
	require.Len(t, output.Formats, 2)
	assert.Equal(t, FormatOutput{
		Extension:   ".docx",
		MIMEType:    domain.MIMEDOCX,
		Description: "Word Document",
	}, output.Formats[0])
	assert.True(t, output.Formats[1].Legacy)
}

func TestServer_handleHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("returns records", func(t *testing.T) {
		history := &mockHistoryService{records: []domain.ConversionRecord{
			{ID: "a", SourceName: "report.docx", Status: domain.StatusSucceeded, FinishedAt: time.Now()},
		}}
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}, History: history})

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "report.docx", output.Records[0].SourceName)
		assert.Equal(t, defaultHistoryLimit, history.limit)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}, History: &mockHistoryService{}})

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{Limit: 5})

		require.NoError(t, err)
		assert.NotNil(t, output.Records)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("disabled history", func(t *testing.T) {
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}})

		_, _, err := server.handleHistory(ctx, nil, HistoryInput{})

		assert.ErrorIs(t, err, ErrHistoryDisabled)
	})

	t.Run("store error", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("database is locked")}
		server := newTestServer(t, &Ports{Conversion: &mockConversionService{}, History: history})

		_, _, err := server.handleHistory(ctx, nil, HistoryInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
	})
}
