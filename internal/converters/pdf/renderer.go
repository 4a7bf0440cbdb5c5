package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PDFRenderer = (*Renderer)(nil)

const (
	fontFamily   = "Helvetica"
	pageMargin   = 54.0
	footerOffset = -36.0
	listIndent   = 14.0
	bulletWidth  = 10.0
)

// Renderer writes layouts to US Letter pages.
type Renderer struct {
	creator string
	now     func() time.Time
}

// NewRenderer creates a renderer that stamps creator into the PDF metadata.
func NewRenderer(creator string) *Renderer {
	return &Renderer{creator: creator, now: time.Now}
}

// Render produces the PDF bytes for a layout.
func (r *Renderer) Render(
	ctx context.Context,
	layout *domain.Layout,
	opts domain.ConversionOptions,
	progress driven.ProgressFunc,
) ([]byte, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: nil layout", domain.ErrInvalidInput)
	}
	opts = opts.Normalised()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCompression(true)
	doc.AliasNbPages("")
	doc.SetTitle(layout.Title, true)
	doc.SetAuthor(layout.Author, true)
	doc.SetSubject(layout.Subject, true)
	doc.SetCreator(r.creator, true)
	doc.SetCreationDate(r.now())
	if opts.Encrypted() {
		doc.SetProtection(fpdf.CnProtectPrint, opts.Password, opts.Password)
	}
	doc.SetFooterFunc(func() {
		doc.SetY(footerOffset)
		doc.SetFont(fontFamily, "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	w := &writer{
		doc: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
		p:   profileFor(opts.Quality),
	}

	doc.AddPage()
	if layout.Title != "" && !startsWithHeading(layout, layout.Title) {
		w.title(layout.Title)
	}

	total := len(layout.Blocks)
	for i, b := range layout.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.block(b)
		if doc.Err() {
			break
		}
		if progress != nil {
			progress(float64(i+1) / float64(total))
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: render pdf: %w", domain.ErrConversionFailed, err)
	}
	if progress != nil {
		progress(1)
	}
	return buf.Bytes(), nil
}

func startsWithHeading(layout *domain.Layout, text string) bool {
	return len(layout.Blocks) > 0 &&
		layout.Blocks[0].Kind == domain.BlockHeading &&
		layout.Blocks[0].Text == text
}

// writer holds per-document drawing state.
type writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
	p   profile
}

func (w *writer) block(b domain.Block) {
	switch b.Kind {
	case domain.BlockHeading:
		w.heading(b.Level, b.Text)
	case domain.BlockListItem:
		w.listItem(b.Level, b.Text)
	case domain.BlockTable:
		w.table(b.Rows)
	case domain.BlockPageBreak:
		w.doc.AddPage()
	case domain.BlockNotice:
		w.notice(b.Text)
	default:
		w.paragraph(b.Text)
	}
}

func (w *writer) body(style string, size float64) {
	w.doc.SetFont(fontFamily, style, size)
	w.doc.SetTextColor(0, 0, 0)
}

func (w *writer) title(text string) {
	size := w.p.headingBase + 4
	w.body("B", size)
	w.doc.MultiCell(0, w.p.lineHeight(size), w.tr(text), "", "C", false)
	w.doc.Ln(size * 0.5)
}

func (w *writer) heading(level int, text string) {
	size := w.p.headingSize(level)
	w.doc.Ln(size * 0.4)
	w.body("B", size)
	w.doc.MultiCell(0, w.p.lineHeight(size), w.tr(text), "", "L", false)
	w.doc.Ln(size * 0.2)
}

func (w *writer) paragraph(text string) {
	w.body("", w.p.bodySize)
	w.doc.MultiCell(0, w.p.lineHeight(w.p.bodySize), w.tr(text), "", "L", false)
	w.doc.Ln(w.p.bodySize * 0.5)
}

func (w *writer) listItem(level int, text string) {
	w.body("", w.p.bodySize)
	lh := w.p.lineHeight(w.p.bodySize)
	left, _, _, _ := w.doc.GetMargins()
	w.doc.SetX(left + listIndent*float64(level))
	w.doc.CellFormat(bulletWidth, lh, w.tr("•"), "", 0, "L", false, 0, "")
	w.doc.MultiCell(0, lh, w.tr(text), "", "L", false)
	w.doc.Ln(w.p.bodySize * 0.2)
}

func (w *writer) notice(text string) {
	size := w.p.bodySize - 1
	w.body("I", size)
	w.doc.SetFillColor(240, 240, 240)
	w.doc.SetTextColor(80, 80, 80)
	w.doc.MultiCell(0, w.p.lineHeight(size), w.tr(text), "", "L", true)
	w.doc.Ln(w.p.bodySize)
}

// table draws rows as equal-width columns. Cell text wraps within its
// column; a row never splits across pages.
func (w *writer) table(rows [][]string) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	left, top, right, bottom := w.doc.GetMargins()
	pageW, pageH := w.doc.GetPageSize()
	colW := (pageW - left - right) / float64(cols)
	size := w.p.bodySize - 1
	lh := w.p.lineHeight(size)
	pad := w.p.cellPadding
	maxLines := max(1, int((pageH-top-bottom-2*pad)/lh))

	w.doc.Ln(w.p.bodySize * 0.3)
	for ri, row := range rows {
		header := ri == 0 && len(rows) > 1
		style := ""
		if header && w.p.shadeHeader {
			style = "B"
		}
		w.body(style, size)

		cells := make([][][]byte, cols)
		lines := 1
		for c := 0; c < cols; c++ {
			var text string
			if c < len(row) {
				text = w.tr(row[c])
			}
			split := w.doc.SplitLines([]byte(text), colW-2*pad)
			if len(split) > maxLines {
				split = split[:maxLines]
			}
			cells[c] = split
			lines = max(lines, len(split))
		}

		h := float64(lines)*lh + 2*pad
		if w.doc.GetY()+h > pageH-bottom {
			w.doc.AddPage()
			w.body(style, size)
		}
		y := w.doc.GetY()

		for c := 0; c < cols; c++ {
			x := left + float64(c)*colW
			if header && w.p.shadeHeader {
				w.doc.SetFillColor(225, 228, 232)
				w.doc.Rect(x, y, colW, h, "F")
			}
			if w.p.grid {
				w.doc.SetDrawColor(160, 160, 160)
				w.doc.Rect(x, y, colW, h, "D")
			}
			for li, line := range cells[c] {
				w.doc.SetXY(x+pad, y+pad+float64(li)*lh)
				w.doc.CellFormat(colW-2*pad, lh, string(line), "", 0, "L", false, 0, "")
			}
		}
		w.doc.SetXY(left, y+h)
	}
	w.doc.Ln(w.p.bodySize * 0.5)
}
