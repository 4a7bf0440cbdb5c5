// Package docx reads Word (.docx) documents into a layout.
package docx

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/officepdf/internal/converters/ooxml"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// tokensPerCheck is how many XML tokens are consumed between
// cancellation checks and progress reports.
const tokensPerCheck = 512

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor reads.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Extract reads word/document.xml into headings, paragraphs, list items and tables.
func (e *Extractor) Extract(ctx context.Context, in driven.ConvertInput, progress driven.ProgressFunc) (*domain.Layout, error) {
	reader, err := ooxml.Open(in.Content)
	if err != nil {
		return nil, err
	}

	body, err := ooxml.ReadPart(reader, "word/document.xml")
	if err != nil {
		if errors.Is(err, ooxml.ErrPartNotFound) {
			return nil, fmt.Errorf("%w: not a Word document", domain.ErrMalformedInput)
		}
		return nil, err
	}

	layout := ooxml.Layout(ooxml.ReadCoreProperties(reader), in.Name)

	var headingStyles map[string]int
	if styles, err := ooxml.ReadPart(reader, "word/styles.xml"); err == nil {
		headingStyles = parseHeadingStyles(styles)
	}

	w := &walker{layout: layout, headingStyles: headingStyles, listLevel: -1}
	if err := w.walk(ctx, body, progress); err != nil {
		return nil, err
	}
	return layout, nil
}

// walker turns the token stream of document.xml into layout blocks.
type walker struct {
	layout        *domain.Layout
	headingStyles map[string]int

	// paragraph
	text      strings.Builder
	style     string
	listLevel int
	inRun     bool
	inText    bool
	pageBreak bool

	// table; nested tables are flattened into the outer cell
	tableDepth int
	rows       [][]string
	row        []string
	cell       []string
}

func (w *walker) walk(ctx context.Context, content []byte, progress driven.ProgressFunc) error {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	total := float64(len(content))

	for count := 1; ; count++ {
		if count%tokensPerCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if progress != nil && total > 0 {
				progress(float64(decoder.InputOffset()) / total)
			}
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: document.xml: %w", domain.ErrMalformedInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			w.end(t)
		case xml.CharData:
			if w.inText {
				w.text.Write(t)
			}
		}
	}

	if progress != nil {
		progress(1)
	}
	return nil
}

func (w *walker) start(se xml.StartElement) {
	switch se.Name.Local {
	case "tbl":
		w.tableDepth++
		if w.tableDepth == 1 {
			w.rows = nil
		}
	case "tr":
		if w.tableDepth == 1 {
			w.row = nil
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cell = nil
		}
	case "p":
		w.text.Reset()
		w.style = ""
		w.listLevel = -1
		w.pageBreak = false
	case "pStyle":
		w.style = ooxml.Attr(se, "val")
	case "numPr":
		if w.listLevel < 0 {
			w.listLevel = 0
		}
	case "ilvl":
		if n, err := strconv.Atoi(ooxml.Attr(se, "val")); err == nil {
			w.listLevel = n
		}
	case "pageBreakBefore":
		if v := ooxml.Attr(se, "val"); v == "" || v == "1" || v == "true" {
			w.layout.AddPageBreak()
		}
	case "r":
		w.inRun = true
	case "t":
		w.inText = w.inRun
	case "tab":
		if w.inRun {
			w.text.WriteByte('\t')
		}
	case "br", "cr":
		if !w.inRun {
			return
		}
		if ooxml.Attr(se, "type") == "page" {
			w.pageBreak = true
			return
		}
		w.text.WriteByte('\n')
	}
}

func (w *walker) end(ee xml.EndElement) {
	switch ee.Name.Local {
	case "t":
		w.inText = false
	case "r":
		w.inRun = false
	case "p":
		w.endParagraph()
	case "tc":
		if w.tableDepth == 1 {
			w.row = append(w.row, strings.Join(w.cell, "\n"))
		}
	case "tr":
		if w.tableDepth == 1 {
			w.rows = append(w.rows, w.row)
		}
	case "tbl":
		if w.tableDepth == 1 {
			w.layout.AddTable(w.rows)
			w.rows = nil
		}
		if w.tableDepth > 0 {
			w.tableDepth--
		}
	}
}

func (w *walker) endParagraph() {
	text := strings.TrimSpace(w.text.String())
	w.text.Reset()

	if w.tableDepth > 0 {
		if text != "" {
			w.cell = append(w.cell, text)
		}
		return
	}

	switch level := w.headingLevel(); {
	case level > 0:
		w.layout.AddHeading(level, text)
	case w.listLevel >= 0:
		w.layout.AddListItem(w.listLevel, text)
	default:
		w.layout.AddParagraph(text)
	}

	if w.pageBreak {
		w.layout.AddPageBreak()
	}
}

// headingLevel returns the heading level of the current paragraph style, or 0.
func (w *walker) headingLevel() int {
	if w.style == "" {
		return 0
	}
	if level, ok := w.headingStyles[w.style]; ok {
		return level
	}
	return builtinHeadingLevel(w.style)
}

// builtinHeadingLevel recognises the default style ids and names
// ("Heading2", "heading 2", "Title", "Subtitle").
func builtinHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch s {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if rest, ok := strings.CutPrefix(s, "heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 9 {
			return min(n, 6)
		}
	}
	return 0
}

// stylesXML represents the parts of word/styles.xml used to find headings.
type stylesXML struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
		ParagraphProps struct {
			OutlineLevel *struct {
				Val string `xml:"val,attr"`
			} `xml:"outlineLvl"`
		} `xml:"pPr"`
	} `xml:"style"`
}

// parseHeadingStyles maps style ids to heading levels. Localised or custom
// style ids are resolved through the style name or outline level.
func parseHeadingStyles(content []byte) map[string]int {
	var doc stylesXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil
	}

	levels := make(map[string]int)
	for _, s := range doc.Styles {
		if s.ID == "" {
			continue
		}
		if level := builtinHeadingLevel(s.Name.Val); level > 0 {
			levels[s.ID] = level
			continue
		}
		if ol := s.ParagraphProps.OutlineLevel; ol != nil {
			// outlineLvl 9 is body text
			if n, err := strconv.Atoi(ol.Val); err == nil && n >= 0 && n < 9 {
				levels[s.ID] = min(n+1, 6)
			}
		}
	}
	return levels
}
