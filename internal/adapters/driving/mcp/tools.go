package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/officepdf/internal/converters/pdf"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// defaultHistoryLimit is used when conversion_history is called without a limit.
const defaultHistoryLimit = 20

// ConvertInput is the input schema for the convert_document tool.
type ConvertInput struct {
	Path      string `json:"path" jsonschema:"absolute path of the Word, Excel or PowerPoint file to convert"`
	Password  string `json:"password,omitempty" jsonschema:"password that protects the PDF (optional)"`
	Quality   string `json:"quality,omitempty" jsonschema:"render quality: low, medium or high (default from settings)"`
	Output    string `json:"output,omitempty" jsonschema:"output PDF path or existing directory (default next to the source)"`
	Overwrite bool   `json:"overwrite,omitempty" jsonschema:"replace an existing output file"`
}

// ConvertOutput is the output schema for the convert_document tool.
type ConvertOutput struct {
	RequestID  string `json:"request_id"`
	OutputPath string `json:"output_path"`
	Size       int64  `json:"size"`
	Pages      int    `json:"pages,omitempty"`
	Encrypted  bool   `json:"encrypted"`
	DurationMS int64  `json:"duration_ms"`
}

// FormatsOutput is the output schema for the list_formats tool.
type FormatsOutput struct {
	Formats []FormatOutput `json:"formats"`
}

// FormatOutput describes one accepted input format.
type FormatOutput struct {
	Extension   string `json:"extension"`
	MIMEType    string `json:"mime_type"`
	Description string `json:"description"`
	Legacy      bool   `json:"legacy"`
}

// HistoryInput is the input schema for the conversion_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 20)"`
}

// HistoryOutput is the output schema for the conversion_history tool.
type HistoryOutput struct {
	Records []domain.ConversionRecord `json:"records"`
	Count   int                       `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_document",
		Description: "Convert a local Word, Excel or PowerPoint document to PDF, optionally password protected",
	}, s.handleConvert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_formats",
		Description: "List the document formats that can be converted",
	}, s.handleListFormats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "conversion_history",
		Description: "List recent conversions, newest first",
	}, s.handleHistory)
}

// handleConvert handles the convert_document tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, ConvertOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	quality := domain.Quality(strings.ToLower(input.Quality))
	if input.Quality != "" && !quality.IsValid() {
		return nil, ConvertOutput{}, fmt.Errorf("%w: quality %q", domain.ErrInvalidInput, input.Quality)
	}

	defaults := domain.DefaultAppSettings()
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil && settings != nil {
			defaults = *settings
		}
	}
	if quality == "" {
		quality = defaults.Conversion.Quality
	}

	source, err := domain.SourceFileFromPath(input.Path, "")
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	outPath := domain.ResolveOutputPath(input.Path, input.Output, defaults.Conversion.OutputDir)
	if err := domain.CheckOverwrite(outPath, input.Overwrite); err != nil {
		return nil, ConvertOutput{}, err
	}

	opts := domain.ConversionOptions{Password: input.Password, Quality: quality}
	outcome, err := s.ports.Conversion.Convert(ctx, source, opts, nil)
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, outcome.Success.PDF, 0644); err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("writing PDF: %w", err)
	}

	output := ConvertOutput{
		RequestID:  outcome.RequestID,
		OutputPath: outPath,
		Size:       int64(len(outcome.Success.PDF)),
		Encrypted:  opts.Encrypted(),
		DurationMS: outcome.Duration().Milliseconds(),
	}
	if info, err := pdf.Inspect(outcome.Success.PDF, input.Password); err == nil {
		output.Pages = info.Pages
	} else {
		logger.Debug("mcp: could not inspect %s: %v", outPath, err)
	}

	return nil, output, nil
}

// handleListFormats handles the list_formats tool invocation.
func (s *Server) handleListFormats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, FormatsOutput, error) {
	return nil, FormatsOutput{Formats: s.formats()}, nil
}

func (s *Server) formats() []FormatOutput {
	formats := s.ports.Conversion.Formats()
	out := make([]FormatOutput, len(formats))
	for i, f := range formats {
		out[i] = FormatOutput{
			Extension:   f.Extension(),
			MIMEType:    f.MIMEType(),
			Description: f.Description(),
			Legacy:      f.Legacy(),
		}
	}
	return out
}

// handleHistory handles the conversion_history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{}, ErrHistoryDisabled
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("listing history: %w", err)
	}
	if records == nil {
		records = []domain.ConversionRecord{}
	}

	return nil, HistoryOutput{Records: records, Count: len(records)}, nil
}

// isNotFound reports whether err means a record does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
