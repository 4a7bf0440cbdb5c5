package domain

import "strings"

// BlockKind identifies the type of a layout block.
type BlockKind int

// Layout block kinds.
const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockTable
	BlockPageBreak
	BlockNotice
)

// Block is one unit of document content.
type Block struct {
	Kind BlockKind

	// Level is the heading level (1-6) for BlockHeading, or the
	// nesting depth (0-based) for BlockListItem.
	Level int

	// Text is the content of text blocks.
	Text string

	// Rows holds the cells of a BlockTable. Rows may be ragged.
	Rows [][]string
}

// Layout is the format-neutral document model produced by extractors
// and rendered to PDF.
type Layout struct {
	Title   string
	Author  string
	Subject string
	Blocks  []Block
}

// AddHeading appends a heading, ignoring blank text.
func (l *Layout) AddHeading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	l.Blocks = append(l.Blocks, Block{Kind: BlockHeading, Level: level, Text: text})
}

// AddParagraph appends a paragraph, ignoring blank text.
func (l *Layout) AddParagraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	l.Blocks = append(l.Blocks, Block{Kind: BlockParagraph, Text: text})
}

// AddListItem appends a list entry at the given nesting depth.
func (l *Layout) AddListItem(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if level < 0 {
		level = 0
	}
	l.Blocks = append(l.Blocks, Block{Kind: BlockListItem, Level: level, Text: text})
}

// AddTable appends a table. Rows with no non-blank cell are dropped.
func (l *Layout) AddTable(rows [][]string) {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	if len(kept) == 0 {
		return
	}
	l.Blocks = append(l.Blocks, Block{Kind: BlockTable, Rows: kept})
}

// AddNotice appends an informational banner.
func (l *Layout) AddNotice(text string) {
	l.Blocks = append(l.Blocks, Block{Kind: BlockNotice, Text: text})
}

// AddPageBreak starts a new page. Leading and repeated breaks are collapsed.
func (l *Layout) AddPageBreak() {
	if len(l.Blocks) == 0 || l.Blocks[len(l.Blocks)-1].Kind == BlockPageBreak {
		return
	}
	l.Blocks = append(l.Blocks, Block{Kind: BlockPageBreak})
}

// Empty returns true if the layout has no visible content.
func (l *Layout) Empty() bool {
	for _, b := range l.Blocks {
		if b.Kind != BlockPageBreak {
			return false
		}
	}
	return true
}

// Text returns the plain text of all blocks, one per line.
func (l *Layout) Text() string {
	var sb strings.Builder
	for _, b := range l.Blocks {
		switch b.Kind {
		case BlockTable:
			for _, row := range b.Rows {
				sb.WriteString(strings.Join(row, "\t"))
				sb.WriteByte('\n')
			}
		case BlockPageBreak:
		default:
			sb.WriteString(b.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
