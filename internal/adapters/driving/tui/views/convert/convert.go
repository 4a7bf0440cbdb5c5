// Package convert provides the conversion view for the TUI: pick a file,
// choose options, watch progress, then save the PDF or retry.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Stage is the step of the conversion flow being shown.
type Stage int

const (
	StagePick Stage = iota
	StageOptions
	StageRunning
	StageDone
)

// Field is the focused control on the options form.
type Field int

const (
	FieldPassword Field = iota
	FieldQuality
	FieldSubmit
	fieldCount
)

// reservedLines is the vertical space used around the file picker.
const reservedLines = 8

// View is the conversion flow.
type View struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	ctx          context.Context
	orchestrator driving.ConversionOrchestrator
	settings     driving.SettingsService
	formats      []domain.Format

	picker   filepicker.Model
	password *input.PasswordInput
	progress progress.Model
	status   *status.Bar

	stage     Stage
	focus     Field
	quality   domain.Quality
	outputDir string

	path      string
	file      domain.SourceFile
	requestID string
	percent   int
	outcome   *domain.ConversionOutcome
	savedPath string
	err       error

	width  int
	height int
}

// NewView creates a conversion view. startDir is where the file picker
// opens; formats restricts which files can be picked.
func NewView(
	s *styles.Styles,
	orchestrator driving.ConversionOrchestrator,
	settings driving.SettingsService,
	formats []domain.Format,
	startDir string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if len(formats) == 0 {
		formats = domain.AllFormats()
	}
	km := keymap.DefaultKeyMap()

	picker := filepicker.New()
	picker.AllowedTypes = allowedTypes(formats)
	picker.ShowPermissions = false
	if startDir != "" {
		picker.CurrentDirectory = startDir
	}

	v := &View{
		styles:       s,
		keymap:       km,
		ctx:          context.Background(),
		orchestrator: orchestrator,
		settings:     settings,
		formats:      formats,
		picker:       picker,
		password:     input.NewPasswordInput(s, "Password"),
		progress:     progress.New(progress.WithSolidFill(string(s.Theme().Primary)), progress.WithWidth(40)),
		status:       status.NewBar(s, km),
		width:        80,
		height:       24,
	}
	v.Reset()
	return v
}

// SetContext sets the context conversions run under.
func (v *View) SetContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// Init reads the picker's starting directory.
func (v *View) Init() tea.Cmd {
	return v.picker.Init()
}

// Reset returns to the file picker and reloads the conversion defaults.
func (v *View) Reset() {
	v.stage = StagePick
	v.focus = FieldPassword
	v.path = ""
	v.file = domain.SourceFile{}
	v.requestID = ""
	v.percent = 0
	v.outcome = nil
	v.savedPath = ""
	v.err = nil
	v.password.Reset()
	v.password.Blur()
	v.status.Clear()

	v.quality = domain.DefaultQuality
	v.outputDir = ""
	if v.settings != nil {
		if s, err := v.settings.Get(); err == nil && s != nil {
			if s.Conversion.Quality.IsValid() {
				v.quality = s.Conversion.Quality
			}
			v.outputDir = s.Conversion.OutputDir
		}
	}
}

// Update handles messages for the conversion view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		var cmd tea.Cmd
		v.picker, cmd = v.picker.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-reservedLines, 3)})
		return v, cmd

	case messages.ConversionSubmitted:
		return v, v.handleSubmitted(msg)

	case messages.ConversionProgress:
		if v.stage == StageRunning && (v.requestID == "" || msg.Event.RequestID == v.requestID) {
			v.percent = max(v.percent, msg.Event.Percent)
			v.status.SetMessage(fmt.Sprintf("Converting %s... %d%%", v.file.Name, v.percent))
		}
		return v, nil

	case messages.ConversionFinished:
		if v.stage == StageRunning {
			v.finish(msg.Outcome)
		}
		return v, nil

	case messages.PDFSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.status.SetState(status.StateError)
			v.status.SetMessage(msg.Err.Error())
		} else {
			v.savedPath = msg.Path
			v.err = nil
			v.status.SetState(status.StateSucceeded)
			v.status.SetMessage("Saved " + msg.Path)
		}
		return v, nil

	case messages.ErrorOccurred:
		if !errors.Is(msg.Err, domain.ErrInvalidState) {
			v.err = msg.Err
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	if v.stage == StagePick {
		return v.updatePicker(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch v.stage {
	case StagePick:
		if keymap.Matches(msg.String(), v.keymap.Back) {
			return v, changeView(messages.ViewMenu)
		}
		return v.updatePicker(msg)

	case StageOptions:
		return v.handleOptionsKey(msg)

	case StageRunning:
		if keymap.Matches(msg.String(), v.keymap.Cancel) {
			v.status.SetMessage("Cancelling...")
			return v, v.cancel()
		}
		return v, nil

	case StageDone:
		return v.handleDoneKey(msg)
	}
	return v, nil
}

func (v *View) handleOptionsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.stage = StagePick
		v.password.Blur()
		v.status.Clear()
		return v, nil
	case "tab", "down":
		return v, v.setFocus((v.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return v, v.setFocus((v.focus + fieldCount - 1) % fieldCount)
	case "enter":
		return v, v.submit()
	}

	switch v.focus {
	case FieldPassword:
		var cmd tea.Cmd
		v.password, cmd = v.password.Update(msg)
		return v, cmd
	case FieldQuality:
		switch msg.String() {
		case "right", "l", " ":
			v.quality = v.quality.Next()
		case "left", "h":
			v.quality = v.quality.Next().Next()
		}
	}
	return v, nil
}

func (v *View) handleDoneKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	succeeded := v.outcome != nil && v.outcome.Succeeded()

	switch {
	case keymap.Matches(k, v.keymap.Save) && succeeded:
		return v, v.save()
	case keymap.Matches(k, v.keymap.Retry) && !succeeded && v.canRetry():
		return v, v.submit()
	case keymap.Matches(k, v.keymap.NewFile):
		cmd := v.resetOrchestrator()
		v.Reset()
		return v, tea.Batch(cmd, v.Init())
	case keymap.Matches(k, v.keymap.Back):
		cmd := v.resetOrchestrator()
		return v, tea.Batch(cmd, changeView(messages.ViewMenu))
	}
	return v, nil
}

func (v *View) updatePicker(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.picker, cmd = v.picker.Update(msg)

	if ok, path := v.picker.DidSelectFile(msg); ok {
		return v, tea.Batch(cmd, v.SelectFile(path))
	}
	if ok, path := v.picker.DidSelectDisabledFile(msg); ok {
		v.err = fmt.Errorf("%s is not a supported document", filepath.Base(path))
	}
	return v, cmd
}

// SelectFile moves to the options form for the file at path.
func (v *View) SelectFile(path string) tea.Cmd {
	file, err := domain.SourceFileFromPath(path, "")
	if err != nil {
		v.err = err
		return nil
	}
	v.path = path
	v.file = file
	v.err = nil
	v.stage = StageOptions
	v.status.SetState(status.StateReady)
	v.status.SetMessage(fmt.Sprintf("%s (%s)", file.Name, humanize.Bytes(uint64(max(file.Size, 0)))))
	v.status.SetHints(nil)
	return v.setFocus(FieldPassword)
}

func (v *View) setFocus(f Field) tea.Cmd {
	v.focus = f
	if f == FieldPassword {
		return v.password.Focus()
	}
	v.password.Blur()
	return nil
}

// submit starts a conversion. The orchestrator is called off the UI
// goroutine because it may wait for observers that the UI drains.
func (v *View) submit() tea.Cmd {
	if v.orchestrator == nil {
		v.err = errors.New("conversion is not available")
		return nil
	}

	ctx := v.ctx
	orch := v.orchestrator
	file := v.file
	opts := domain.ConversionOptions{Password: v.password.Value(), Quality: v.quality}

	v.stage = StageRunning
	v.password.Blur()
	v.requestID = ""
	v.percent = 0
	v.outcome = nil
	v.savedPath = ""
	v.err = nil
	v.status.SetState(status.StateConverting)
	v.status.SetMessage("")
	v.status.SetHints(v.keymap.RunningHelp())

	return func() tea.Msg {
		id, err := orch.Submit(ctx, file, opts)
		return messages.ConversionSubmitted{RequestID: id, Err: err}
	}
}

func (v *View) handleSubmitted(msg messages.ConversionSubmitted) tea.Cmd {
	if v.stage != StageRunning {
		return nil
	}
	if msg.Err != nil && !errors.Is(msg.Err, domain.ErrValidation) {
		// Nothing started, so no outcome will follow.
		v.err = msg.Err
		v.stage = StageOptions
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		v.status.SetHints(nil)
		return v.setFocus(FieldSubmit)
	}
	if v.requestID == "" {
		v.requestID = msg.RequestID
	}
	return nil
}

func (v *View) cancel() tea.Cmd {
	orch := v.orchestrator
	if orch == nil {
		return nil
	}
	return func() tea.Msg {
		// A request that finished first keeps its outcome.
		if err := orch.Cancel(); err != nil && !errors.Is(err, domain.ErrInvalidState) {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

func (v *View) resetOrchestrator() tea.Cmd {
	orch := v.orchestrator
	if orch == nil || !orch.State().Terminal() {
		return nil
	}
	return func() tea.Msg {
		if err := orch.Reset(); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

func (v *View) finish(o domain.ConversionOutcome) {
	v.outcome = &o
	v.stage = StageDone
	v.status.SetHints(v.keymap.ResultHelp(o.Succeeded()))
	if o.Succeeded() {
		v.percent = domain.ProgressComplete
		v.status.SetState(status.StateSucceeded)
		v.status.SetMessage(fmt.Sprintf("%s is ready", o.Success.Filename))
		return
	}
	v.status.SetState(status.StateError)
	v.status.SetMessage(o.Failure.Kind.String())
	if !v.canRetry() {
		v.status.SetHints([]key.Binding{v.keymap.NewFile, v.keymap.Back})
	}
}

func (v *View) canRetry() bool {
	return v.outcome != nil && v.outcome.Failure != nil && v.outcome.Failure.Kind.Retryable()
}

// save writes the PDF next to the source, or into the configured output
// directory, without replacing an existing file.
func (v *View) save() tea.Cmd {
	if v.outcome == nil || v.outcome.Success == nil {
		return nil
	}
	dir := v.outputDir
	if dir == "" {
		dir = filepath.Dir(v.path)
	}
	success := *v.outcome.Success

	return func() tea.Msg {
		path, err := savePDF(dir, success.Filename, success.PDF)
		return messages.PDFSaved{Path: path, Err: err}
	}
}

func savePDF(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := uniquePath(filepath.Join(dir, name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// uniquePath appends " (n)" before the extension until path is unused.
func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// View renders the current stage.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Convert a document"))
	b.WriteString("\n\n")

	switch v.stage {
	case StagePick:
		v.viewPick(&b)
	case StageOptions:
		v.viewOptions(&b)
	case StageRunning:
		v.viewRunning(&b)
	case StageDone:
		v.viewDone(&b)
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	v.status.SetWidth(v.width)
	b.WriteString(v.status.View())
	return b.String()
}

func (v *View) viewPick(b *strings.Builder) {
	exts := make([]string, len(v.formats))
	for i, f := range v.formats {
		exts[i] = f.Extension()
	}
	b.WriteString(v.styles.Muted.Render("Choose a document (" + strings.Join(exts, " ") + ")"))
	b.WriteString("\n\n")
	b.WriteString(v.picker.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [h/backspace] up a folder  [esc] menu"))
	b.WriteString("\n")
}

func (v *View) viewOptions(b *strings.Builder) {
	v.writeFileInfo(b)
	b.WriteString("\n")

	b.WriteString(v.password.View())
	b.WriteString("\n\n")

	label := v.styles.Normal.Render("Quality ")
	if v.focus == FieldQuality {
		label = v.styles.Title.Render("Quality ")
	}
	b.WriteString(label)
	for _, q := range domain.AllQualities() {
		text := " " + q.String() + " "
		if q == v.quality {
			b.WriteString(v.styles.Selected.Render(text))
		} else {
			b.WriteString(v.styles.Muted.Render(text))
		}
	}
	b.WriteString("\n\n")

	button := "[ Convert ]"
	if v.focus == FieldSubmit {
		b.WriteString(v.styles.Selected.Render(button))
	} else {
		b.WriteString(v.styles.Normal.Render(button))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[tab] next field  [←/→] quality  [enter] convert  [esc] choose another file"))
	b.WriteString("\n")
}

func (v *View) viewRunning(b *strings.Builder) {
	v.writeFileInfo(b)
	b.WriteString("\n")
	v.progress.FullColor = string(v.styles.Theme().Primary)
	b.WriteString(v.progress.ViewAs(float64(v.percent) / 100))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[esc/x] cancel"))
	b.WriteString("\n")
}

func (v *View) viewDone(b *strings.Builder) {
	v.writeFileInfo(b)
	b.WriteString("\n")
	if v.outcome == nil {
		return
	}

	if v.outcome.Succeeded() {
		s := v.outcome.Success
		line := fmt.Sprintf("✓ %s is ready (%s in %s)",
			s.Filename, humanize.Bytes(uint64(len(s.PDF))), v.outcome.Duration().Round(time.Millisecond))
		b.WriteString(v.styles.Success.Render(line))
		b.WriteString("\n")
		if v.outcome.Request.Encrypted {
			b.WriteString(v.styles.Muted.Render("The PDF is password protected."))
			b.WriteString("\n")
		}
		if v.savedPath != "" {
			b.WriteString(v.styles.Normal.Render("Saved to " + v.savedPath))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[s] save pdf  [n] convert another  [esc] menu"))
		b.WriteString("\n")
		return
	}

	b.WriteString(v.styles.Banner.Render("Conversion failed: " + v.outcome.Failure.Reason))
	b.WriteString("\n\n")
	if v.canRetry() {
		b.WriteString(v.styles.Help.Render("[r] retry  [n] choose another file  [esc] menu"))
	} else {
		b.WriteString(v.styles.Help.Render("[n] choose another file  [esc] menu"))
	}
	b.WriteString("\n")
}

func (v *View) writeFileInfo(b *strings.Builder) {
	desc := "unknown format"
	if f, ok := domain.FormatFromExtension(v.file.Extension()); ok {
		desc = f.Description()
	}
	b.WriteString(v.styles.Subtitle.Render(v.file.Name))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s, %s", humanize.Bytes(uint64(max(v.file.Size, 0))), desc)))
	b.WriteString("\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.password.SetWidth(min(width, 80))
	v.progress.Width = max(min(width-4, 60), 10)
}

// Stage returns the current stage.
func (v *View) Stage() Stage {
	return v.stage
}

// Focus returns the focused form field.
func (v *View) Focus() Field {
	return v.focus
}

// Quality returns the selected quality.
func (v *View) Quality() domain.Quality {
	return v.quality
}

// Percent returns the last progress shown.
func (v *View) Percent() int {
	return v.percent
}

// Outcome returns the finished outcome, or nil.
func (v *View) Outcome() *domain.ConversionOutcome {
	return v.outcome
}

// SavedPath returns where the PDF was saved, if it was.
func (v *View) SavedPath() string {
	return v.savedPath
}

// Err returns the last error shown.
func (v *View) Err() error {
	return v.err
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// allowedTypes lists picker suffixes in lower and upper case.
func allowedTypes(formats []domain.Format) []string {
	types := make([]string, 0, len(formats)*2)
	for _, f := range formats {
		ext := f.Extension()
		types = append(types, ext, strings.ToUpper(ext))
	}
	return types
}
