// Package legacy recovers text from pre-2007 binary Office documents
// (.doc, .xls, .ppt) stored in OLE2 compound files.
//
// The binary record formats are not parsed. Text is salvaged from the
// application's main stream by looking for runs of UTF-16LE and
// Windows-1252 characters, so the output carries a notice saying so.
package legacy

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"

	"github.com/custodia-labs/officepdf/internal/converters/ooxml"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	// DefaultMinRun is the shortest character run kept as text.
	DefaultMinRun = 5

	// maxParagraphs bounds the salvaged output.
	maxParagraphs = 20000

	encryptedPackage = "EncryptedPackage"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// textStreams names the compound-file streams holding document text.
var textStreams = map[domain.Family][]string{
	domain.FamilyWord:       {"WordDocument"},
	domain.FamilyExcel:      {"Workbook", "Book"},
	domain.FamilyPowerPoint: {"PowerPoint Document"},
}

// IsOLE reports whether content starts with the OLE2 compound file signature.
func IsOLE(content []byte) bool {
	return bytes.HasPrefix(content, oleSignature)
}

// Extractor handles DOC, XLS and PPT files.
type Extractor struct {
	minRun int
}

// New creates a new legacy extractor. minRun values below 2 use DefaultMinRun.
func New(minRun int) *Extractor {
	if minRun < 2 {
		minRun = DefaultMinRun
	}
	return &Extractor{minRun: minRun}
}

// Formats returns the formats this extractor reads.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOC, domain.FormatXLS, domain.FormatPPT}
}

// Extract salvages the text of the format family's main stream.
func (e *Extractor) Extract(ctx context.Context, in driven.ConvertInput, progress driven.ProgressFunc) (*domain.Layout, error) {
	if !IsOLE(in.Content) {
		return nil, fmt.Errorf("%w: not an OLE2 compound document", domain.ErrMalformedInput)
	}

	doc, err := mscfb.New(bytes.NewReader(in.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: compound document: %w", domain.ErrMalformedInput, err)
	}

	wanted := make(map[string]bool)
	for _, name := range textStreams[in.Format.Family()] {
		wanted[name] = true
	}

	var stream []byte
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Name == encryptedPackage {
			return nil, fmt.Errorf("%w: the document is protected with a password", domain.ErrMalformedInput)
		}
		if stream != nil || !wanted[entry.Name] {
			continue
		}
		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("%w: read %s stream: %w", domain.ErrMalformedInput, entry.Name, err)
		}
		stream = buf
	}
	if stream == nil {
		return nil, fmt.Errorf("%w: no %s content found", domain.ErrMalformedInput, in.Format.Description())
	}
	if progress != nil {
		progress(0.3)
	}

	layout := &domain.Layout{Title: ooxml.TitleFromFilename(in.Name)}
	layout.AddNotice(fmt.Sprintf(
		"Text recovered from a %s file. Formatting and embedded objects are not preserved.",
		in.Format.Description()))

	paragraphs := salvage(stream, e.minRun)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(paragraphs) > maxParagraphs {
		paragraphs = paragraphs[:maxParagraphs]
	}
	for _, p := range paragraphs {
		layout.AddParagraph(p)
	}
	if len(paragraphs) == 0 {
		layout.AddParagraph("No readable text was found.")
	}

	if progress != nil {
		progress(1)
	}
	return layout, nil
}
