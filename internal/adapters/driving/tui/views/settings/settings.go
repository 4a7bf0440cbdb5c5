// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Row is a selectable setting.
type Row int

const (
	RowTheme Row = iota
	RowQuality
	RowOutputDir
	rowCount
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

var errNoSettings = errors.New("settings service not available")

// View shows and edits the theme and conversion defaults.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error
	notice   string

	selected Row
	editing  bool
	dirInput textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	dirInput := textinput.New()
	dirInput.Placeholder = "next to the source file"
	dirInput.CharLimit = 4096

	return &View{
		styles:          s,
		settingsService: settingsService,
		dirInput:        dirInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: errNoSettings}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.notice = ""
			return v, nil
		}
		v.err = nil
		return v, v.loadSettings()

	case messages.ThemeChanged:
		if v.settings != nil {
			v.settings.Theme = msg.Theme
		}
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleKeys(msg)
	}

	return v, nil
}

func (v *View) handleKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < rowCount-1 {
			v.selected++
		}
	case "t":
		return v, v.toggleTheme()
	case keyEnter, " ", "right", "l":
		return v, v.activate()
	}
	return v, nil
}

func (v *View) activate() tea.Cmd {
	switch v.selected {
	case RowTheme:
		return v.toggleTheme()
	case RowQuality:
		return v.cycleQuality()
	case RowOutputDir:
		v.editing = true
		if v.settings != nil {
			v.dirInput.SetValue(v.settings.Conversion.OutputDir)
		}
		v.dirInput.CursorEnd()
		return v.dirInput.Focus()
	}
	return nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.editing = false
		v.dirInput.Blur()
		return v, nil
	case keyEnter:
		v.editing = false
		v.dirInput.Blur()
		return v, v.setOutputDir(strings.TrimSpace(v.dirInput.Value()))
	}
	var cmd tea.Cmd
	v.dirInput, cmd = v.dirInput.Update(msg)
	return v, cmd
}

// toggleTheme flips the stored theme. The app restyles on ThemeChanged.
func (v *View) toggleTheme() tea.Cmd {
	svc := v.settingsService
	if svc == nil {
		v.err = errNoSettings
		return nil
	}
	return func() tea.Msg {
		theme, err := svc.ToggleTheme()
		if err != nil {
			return messages.SettingsSaved{Err: err}
		}
		return messages.ThemeChanged{Theme: theme}
	}
}

func (v *View) cycleQuality() tea.Cmd {
	svc := v.settingsService
	if svc == nil {
		v.err = errNoSettings
		return nil
	}
	next := domain.DefaultQuality.Next()
	if v.settings != nil {
		next = v.settings.Conversion.Quality.Next()
	}
	v.notice = fmt.Sprintf("Default quality set to %s", next)
	return func() tea.Msg {
		return messages.SettingsSaved{Err: svc.SetQuality(next)}
	}
}

func (v *View) setOutputDir(dir string) tea.Cmd {
	svc := v.settingsService
	if svc == nil {
		v.err = errNoSettings
		return nil
	}
	if dir == "" {
		v.notice = "PDFs will be saved next to the source file"
	} else {
		v.notice = "PDFs will be saved to " + dir
	}
	return func() tea.Msg {
		return messages.SettingsSaved{Err: svc.SetOutputDir(dir)}
	}
}

// View renders the settings.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		b.WriteString("\n")
		return b.String()
	}

	outputDir := v.settings.Conversion.OutputDir
	if outputDir == "" {
		outputDir = "next to the source file"
	}

	v.renderRow(&b, RowTheme, "Theme", string(v.settings.Theme))
	v.renderRow(&b, RowQuality, "Default quality", string(v.settings.Conversion.Quality))
	if v.editing {
		v.renderRow(&b, RowOutputDir, "Output directory", v.dirInput.View())
	} else {
		v.renderRow(&b, RowOutputDir, "Output directory", outputDir)
	}

	if v.notice != "" && v.err == nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[Enter] Save  [Esc] Cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Change  [t] Theme  [Esc] Back"))
	}
	return b.String()
}

func (v *View) renderRow(b *strings.Builder, row Row, label, value string) {
	cursor := "  "
	labelStyle := v.styles.Normal
	if row == v.selected {
		cursor = "> "
		labelStyle = v.styles.Subtitle
	}
	b.WriteString(cursor)
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
	b.WriteString(v.styles.Muted.Render(value))
	b.WriteString("\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.dirInput.Width = max(width-30, 20)
}

// Selected returns the highlighted row.
func (v *View) Selected() Row {
	return v.selected
}

// Editing reports whether the output directory is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Settings returns the loaded settings, or nil.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}
