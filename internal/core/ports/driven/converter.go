package driven

import (
	"context"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// ProgressFunc receives completion fractions in [0, 1].
// Implementations must not block.
type ProgressFunc func(fraction float64)

// ConvertInput is the job handed to a converter.
// Content is owned by the converter for the duration of the call.
type ConvertInput struct {
	// Name is the source filename, used as a title fallback.
	Name string

	// Content is the raw document bytes.
	Content []byte

	// Format is the validated format tag.
	Format domain.Format

	// Options carry the password and quality.
	Options domain.ConversionOptions
}

// Converter turns an office document into a PDF.
// Conversion is format-dispatched: a format with no conversion
// routine fails with domain.ErrUnsupportedFormat.
type Converter interface {
	// Convert produces PDF bytes. It honours ctx cancellation and reports
	// sub-task completion through progress, which may be nil.
	Convert(ctx context.Context, in ConvertInput, progress ProgressFunc) ([]byte, error)

	// Formats returns the formats this converter handles.
	Formats() []domain.Format
}

// Extractor reads one document format into a Layout.
type Extractor interface {
	// Formats returns the formats this extractor reads.
	Formats() []domain.Format

	// Extract parses content. Malformed content fails with an error
	// wrapping domain.ErrMalformedInput.
	Extract(ctx context.Context, in ConvertInput, progress ProgressFunc) (*domain.Layout, error)
}

// PDFRenderer writes a Layout as a PDF document.
type PDFRenderer interface {
	// Render produces PDF bytes honouring the password and quality options.
	Render(ctx context.Context, layout *domain.Layout, opts domain.ConversionOptions, progress ProgressFunc) ([]byte, error)
}
