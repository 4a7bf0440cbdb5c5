package converters

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/officepdf/internal/converters/legacy"
	"github.com/custodia-labs/officepdf/internal/converters/ooxml"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.Converter = (*Registry)(nil)

// extractShare is the part of the progress range spent extracting;
// rendering takes the rest.
const extractShare = 0.7

// Registry maps formats to their extractors and renders the result.
// Register extractors during initialisation; Convert is safe for
// concurrent use afterwards.
type Registry struct {
	extractors map[domain.Format]driven.Extractor
	renderer   driven.PDFRenderer
}

// NewRegistry creates an empty registry that renders with renderer.
func NewRegistry(renderer driven.PDFRenderer) *Registry {
	return &Registry{
		extractors: make(map[domain.Format]driven.Extractor),
		renderer:   renderer,
	}
}

// Register adds an extractor for every format it reports.
// A later registration for the same format replaces the earlier one.
func (r *Registry) Register(ex driven.Extractor) {
	for _, f := range ex.Formats() {
		r.extractors[f] = ex
	}
}

// Has returns true if an extractor is registered for the format.
func (r *Registry) Has(f domain.Format) bool {
	_, ok := r.extractors[f]
	return ok
}

// Formats returns the registered formats in display order.
func (r *Registry) Formats() []domain.Format {
	out := make([]domain.Format, 0, len(r.extractors))
	for _, f := range domain.AllFormats() {
		if r.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Convert extracts the document and renders it as a PDF.
func (r *Registry) Convert(ctx context.Context, in driven.ConvertInput, progress driven.ProgressFunc) ([]byte, error) {
	ex, err := r.extractorFor(in)
	if err != nil {
		return nil, err
	}
	if r.renderer == nil {
		return nil, fmt.Errorf("%w: no PDF renderer configured", domain.ErrConversionFailed)
	}

	layout, err := ex.Extract(ctx, in, scaled(progress, 0, extractShare))
	if err != nil {
		return nil, conversionErr("extract", in.Format, err)
	}
	if layout.Empty() {
		layout.AddNotice("This document has no text content.")
	}

	pdf, err := r.renderer.Render(ctx, layout, in.Options, scaled(progress, extractShare, 1))
	if err != nil {
		return nil, conversionErr("render", in.Format, err)
	}
	return pdf, nil
}

// extractorFor picks the extractor for the input. Files saved under the
// wrong generation's extension (a .doc that is really a zip package, or a
// .docx in an OLE2 container) are routed by their content.
func (r *Registry) extractorFor(in driven.ConvertInput) (driven.Extractor, error) {
	format := in.Format
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	routed := format
	switch {
	case format.Legacy() && ooxml.IsPackage(in.Content):
		routed = format.Counterpart()
	case !format.Legacy() && legacy.IsOLE(in.Content):
		routed = format.Counterpart()
	}
	if routed != format {
		if ex, ok := r.extractors[routed]; ok {
			logger.Debug("%s file has %s content, reading it as %s", format, routed, routed)
			return ex, nil
		}
	}

	ex, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	return ex, nil
}

// conversionErr wraps extractor and renderer errors as conversion failures,
// leaving cancellation and already-classified errors untouched.
func conversionErr(step string, format domain.Format, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrConversionFailed), errors.Is(err, domain.ErrUnsupportedFormat):
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrConversionFailed, step, format, err)
}

// scaled maps a stage's [0, 1] progress onto [lo, hi] of the whole job.
func scaled(progress driven.ProgressFunc, lo, hi float64) driven.ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(f float64) {
		f = min(max(f, 0), 1)
		progress(lo + f*(hi-lo))
	}
}
