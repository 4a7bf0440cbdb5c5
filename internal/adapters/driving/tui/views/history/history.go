// Package history provides the conversion history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// pageSize is how many records the view loads.
const pageSize = 100

var errNoHistory = errors.New("history is disabled")

// View lists recent conversions, newest first.
type View struct {
	styles  *styles.Styles
	history driving.HistoryService

	table      table.Model
	records    []domain.ConversionRecord
	err        error
	loaded     bool
	confirming bool

	width  int
	height int
}

// NewView creates a history view. A nil service shows that history is
// disabled.
func NewView(s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	v := &View{
		styles:  s,
		history: history,
		table:   t,
		width:   80,
		height:  24,
	}
	v.applyTableStyles()
	return v
}

func columns(width int) []table.Column {
	file := max(width-60, 16)
	return []table.Column{
		{Title: "When", Width: 14},
		{Title: "File", Width: file},
		{Title: "Size", Width: 9},
		{Title: "Status", Width: 9},
		{Title: "Result", Width: 22},
	}
}

func (v *View) applyTableStyles() {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderForeground(v.styles.Theme().Border).
		Foreground(v.styles.Theme().Secondary).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(v.styles.Theme().Background).
		Background(v.styles.Theme().Primary)
	v.table.SetStyles(ts)
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.history
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: errNoHistory}
		}
		records, err := svc.List(context.Background(), pageSize)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	svc := v.history
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.HistoryCleared{Err: svc.Clear(context.Background())}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loaded = true
		v.err = msg.Err
		if msg.Err == nil {
			v.setRecords(msg.Records)
		}
		return v, nil

	case messages.HistoryCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.setRecords(nil)
		return v, nil

	case messages.ThemeChanged:
		v.applyTableStyles()
		return v, nil

	case messages.ConversionFinished:
		// A new record exists now.
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirming {
		v.confirming = false
		if msg.String() == "y" {
			return v, v.clear()
		}
		return v, nil
	}

	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		return v, v.load()
	case "c":
		if len(v.records) > 0 {
			v.confirming = true
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) setRecords(records []domain.ConversionRecord) {
	v.records = records
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{
			humanize.Time(r.FinishedAt),
			r.SourceName,
			humanize.Bytes(uint64(max(r.SourceSize, 0))),
			string(r.Status),
			result(r),
		}
	}
	v.table.SetRows(rows)
	v.table.SetCursor(0)
}

func result(r domain.ConversionRecord) string {
	if r.Status == domain.StatusSucceeded {
		out := r.OutputName
		if r.Encrypted {
			out += " (locked)"
		}
		return out
	}
	return r.FailureKind.String()
}

// View renders the history table.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n")
	case !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
		b.WriteString("\n")
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No conversions recorded."))
		b.WriteString("\n")
	default:
		b.WriteString(v.table.View())
		b.WriteString("\n")
		if r, ok := v.Selected(); ok && r.Status == domain.StatusFailed && r.Reason != "" {
			b.WriteString("\n")
			b.WriteString(v.styles.Error.Render(r.Reason))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render("Clear all history? [y] yes  [any key] no"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] Navigate  [r] Refresh  [c] Clear  [Esc] Back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.table.SetColumns(columns(width))
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-8, 3))
}

// Records returns the loaded records.
func (v *View) Records() []domain.ConversionRecord {
	return v.records
}

// Selected returns the record under the cursor.
func (v *View) Selected() (domain.ConversionRecord, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.records) {
		return domain.ConversionRecord{}, false
	}
	return v.records[i], true
}

// Confirming reports whether a clear is awaiting confirmation.
func (v *View) Confirming() bool {
	return v.confirming
}
