// Package xlsx reads Excel (.xlsx) workbooks into a layout.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/officepdf/internal/converters/ooxml"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	// DefaultMaxColumns is the widest table rendered on a portrait page.
	DefaultMaxColumns = 12

	// DefaultMaxRows bounds the rows taken from a single sheet.
	DefaultMaxRows = 5000
)

// Extractor handles XLSX workbooks.
type Extractor struct {
	maxColumns int
	maxRows    int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithMaxColumns sets the column limit per sheet.
func WithMaxColumns(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxColumns = n
		}
	}
}

// WithMaxRows sets the row limit per sheet.
func WithMaxRows(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxRows = n
		}
	}
}

// New creates a new XLSX extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{maxColumns: DefaultMaxColumns, maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Formats returns the formats this extractor reads.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatXLSX}
}

// Extract turns every visible sheet into a heading followed by a table,
// one sheet per page.
func (e *Extractor) Extract(ctx context.Context, in driven.ConvertInput, progress driven.ProgressFunc) (*domain.Layout, error) {
	f, err := excelize.OpenReader(bytes.NewReader(in.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: not an Excel workbook: %w", domain.ErrMalformedInput, err)
	}
	defer f.Close()

	var props ooxml.CoreProperties
	if dp, err := f.GetDocProps(); err == nil && dp != nil {
		props = ooxml.CoreProperties{
			Title:   strings.TrimSpace(dp.Title),
			Subject: strings.TrimSpace(dp.Subject),
			Creator: strings.TrimSpace(dp.Creator),
		}
	}
	layout := ooxml.Layout(props, in.Name)

	sheets := f.GetSheetList()
	for i, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if visible, err := f.GetSheetVisible(name); err != nil || visible {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q: %w", domain.ErrMalformedInput, name, err)
			}
			layout.AddPageBreak()
			layout.AddHeading(2, name)
			e.addSheet(layout, rows)
		}

		if progress != nil {
			progress(float64(i+1) / float64(len(sheets)))
		}
	}

	if layout.Empty() {
		layout.AddParagraph("This workbook has no visible sheets.")
	}
	return layout, nil
}

// addSheet appends one sheet's rows, truncated to the configured limits.
func (e *Extractor) addSheet(layout *domain.Layout, rows [][]string) {
	rows = trimTrailingEmptyRows(rows)
	if len(rows) == 0 {
		layout.AddParagraph("(empty sheet)")
		return
	}

	var notes []string
	if len(rows) > e.maxRows {
		notes = append(notes, fmt.Sprintf("Only the first %d of %d rows are shown.", e.maxRows, len(rows)))
		rows = rows[:e.maxRows]
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width > e.maxColumns {
		last, _ := excelize.ColumnNumberToName(e.maxColumns)
		notes = append(notes, fmt.Sprintf("Columns after %s are omitted.", last))
		width = e.maxColumns
	}

	table := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		table[i] = cells
	}

	if len(notes) > 0 {
		layout.AddNotice(strings.Join(notes, " "))
	}
	layout.AddTable(table)
}

// trimTrailingEmptyRows drops blank rows from the end of a sheet.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
