// Package pptx reads PowerPoint (.pptx) presentations into a layout.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/officepdf/internal/converters/ooxml"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	slidePrefix = "ppt/slides/slide"
	slideSuffix = ".xml"
)

// Extractor handles PPTX presentations.
type Extractor struct{}

// New creates a new PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor reads.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPPTX}
}

// Extract renders each slide on its own page, headed by its title.
func (e *Extractor) Extract(ctx context.Context, in driven.ConvertInput, progress driven.ProgressFunc) (*domain.Layout, error) {
	reader, err := ooxml.Open(in.Content)
	if err != nil {
		return nil, err
	}

	slides := slideParts(reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: not a PowerPoint presentation", domain.ErrMalformedInput)
	}

	layout := ooxml.Layout(ooxml.ReadCoreProperties(reader), in.Name)

	for i, part := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := ooxml.ReadPart(reader, part.name)
		if err != nil {
			return nil, err
		}
		slide, err := parseSlide(content)
		if err != nil {
			return nil, fmt.Errorf("%w: slide %d: %w", domain.ErrMalformedInput, part.number, err)
		}

		title := slide.title
		if title == "" {
			title = fmt.Sprintf("Slide %d", part.number)
		}
		layout.AddPageBreak()
		layout.AddHeading(2, title)
		layout.Blocks = append(layout.Blocks, slide.body.Blocks...)

		if progress != nil {
			progress(float64(i+1) / float64(len(slides)))
		}
	}
	return layout, nil
}

type slidePart struct {
	name   string
	number int
}

// slideParts lists the slide members in slide-number order.
func slideParts(reader *zip.Reader) []slidePart {
	var parts []slidePart
	for _, file := range reader.File {
		name := strings.ToLower(file.Name)
		if !strings.HasPrefix(name, slidePrefix) || !strings.HasSuffix(name, slideSuffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, slidePrefix), slideSuffix))
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{name: file.Name, number: n})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })
	return parts
}

// slide is the parsed content of one slide.
type slide struct {
	title string
	body  domain.Layout
}

// shape collects the paragraphs of one p:sp element.
type shape struct {
	placeholder string // "", "title", "body", ...
	hasPh       bool
	paragraphs  []paragraph
}

type paragraph struct {
	level int
	text  string
}

func (s *shape) isTitle() bool {
	return s.placeholder == "title" || s.placeholder == "ctrTitle"
}

// isOutline reports whether the shape is a bulleted body placeholder.
func (s *shape) isOutline() bool {
	if !s.hasPh {
		return false
	}
	switch s.placeholder {
	case "", "body", "obj":
		return true
	}
	return false
}

// parseSlide walks the shape tree of a slide.
func parseSlide(content []byte) (*slide, error) {
	out := &slide{}
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		cur        *shape
		text       strings.Builder
		level      int
		inText     bool
		tableDepth int
		rows       [][]string
		row        []string
		cell       []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				cur = &shape{}
			case "ph":
				if cur != nil {
					cur.hasPh = true
					cur.placeholder = ooxml.Attr(t, "type")
				}
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					rows = nil
				}
			case "tr":
				row = nil
			case "tc":
				cell = nil
			case "p":
				text.Reset()
				level = 0
			case "pPr":
				if n, err := strconv.Atoi(ooxml.Attr(t, "lvl")); err == nil {
					level = n
				}
			case "t":
				inText = true
			case "br":
				text.WriteByte('\n')
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				s := strings.TrimSpace(text.String())
				if s == "" {
					continue
				}
				switch {
				case tableDepth > 0:
					cell = append(cell, s)
				case cur != nil:
					cur.paragraphs = append(cur.paragraphs, paragraph{level: level, text: s})
				default:
					out.body.AddParagraph(s)
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(cell, "\n"))
				}
			case "tr":
				if tableDepth == 1 {
					rows = append(rows, row)
				}
			case "tbl":
				if tableDepth == 1 {
					out.body.AddTable(rows)
				}
				if tableDepth > 0 {
					tableDepth--
				}
			case "sp":
				if cur != nil {
					out.addShape(cur)
				}
				cur = nil
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
	return out, nil
}

func (s *slide) addShape(sh *shape) {
	if sh.isTitle() && s.title == "" {
		texts := make([]string, 0, len(sh.paragraphs))
		for _, p := range sh.paragraphs {
			texts = append(texts, p.text)
		}
		s.title = strings.Join(texts, " ")
		return
	}
	for _, p := range sh.paragraphs {
		if sh.isOutline() {
			s.body.AddListItem(p.level, p.text)
		} else {
			s.body.AddParagraph(p.text)
		}
	}
}
