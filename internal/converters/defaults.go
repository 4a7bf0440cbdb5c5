package converters

import (
	"github.com/custodia-labs/officepdf/internal/converters/docx"
	"github.com/custodia-labs/officepdf/internal/converters/legacy"
	"github.com/custodia-labs/officepdf/internal/converters/pdf"
	"github.com/custodia-labs/officepdf/internal/converters/pptx"
	"github.com/custodia-labs/officepdf/internal/converters/xlsx"
)

// RegisterDefaults registers the built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	r.Register(legacy.New(legacy.DefaultMinRun))
}

// NewDefault creates a registry with every built-in extractor and the
// fpdf renderer. creator is written to the PDF metadata.
func NewDefault(creator string) *Registry {
	r := NewRegistry(pdf.NewRenderer(creator))
	RegisterDefaults(r)
	return r
}
