package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/views/convert"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context conversions run under.
	ctx context.Context

	// styles is shared by every view and restyled on theme changes.
	styles *styles.Styles

	// bridge delivers orchestrator callbacks as messages.
	bridge      *ObserverBridge
	unsubscribe func()

	menuView     *menu.View
	convertView  *convert.View
	historyView  *history.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool

	mu      sync.Mutex
	program *tea.Program
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports and
// subscribes it to the orchestrator. Call Close when done.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.ForTheme(ports.Settings.Theme())
	bridge := NewObserverBridge()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		bridge:       bridge,
		unsubscribe:  ports.Orchestrator.Subscribe(bridge),
		menuView:     menu.NewView(s),
		convertView:  convert.NewView(s, ports.Orchestrator, ports.Settings, ports.Formats, ports.StartDir),
		historyView:  history.NewView(s, ports.History),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
		a.convertView.SetContext(ctx)
	}
	return a
}

// Close unsubscribes from the orchestrator and stops event delivery.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.bridge.Close()
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("officepdf"),
		a.bridge.Wait(),
		a.convertView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.convertView, cmd = a.convertView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ConversionProgress:
		a.convertView, cmd = a.convertView.Update(msg)
		return a, tea.Batch(cmd, a.bridge.Wait())

	case messages.ConversionFinished:
		var historyCmd tea.Cmd
		a.convertView, cmd = a.convertView.Update(msg)
		if a.currentView == messages.ViewHistory {
			a.historyView, historyCmd = a.historyView.Update(msg)
		}
		return a, tea.Batch(cmd, historyCmd, a.bridge.Wait())

	case messages.ConversionSubmitted, messages.PDFSaved:
		a.convertView, cmd = a.convertView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded, messages.HistoryCleared:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ThemeChanged:
		a.styles.Apply(styles.ThemeFor(msg.Theme))
		a.settingsView, cmd = a.settingsView.Update(msg)
		a.historyView, _ = a.historyView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.convertView, cmd = a.convertView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// The file picker reads directories asynchronously, so its messages
	// reach the conversion view whichever view is showing.
	var cmds []tea.Cmd
	a.convertView, cmd = a.convertView.Update(msg)
	cmds = append(cmds, cmd)
	switch a.currentView {
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
		cmds = append(cmds, cmd)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
		cmds = append(cmds, cmd)
	case messages.ViewMenu, messages.ViewConvert, messages.ViewHelp:
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		if msg.String() == "?" {
			return a, a.switchView(messages.ViewHelp)
		}
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewConvert:
		a.convertView, cmd = a.convertView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewConvert:
		if a.convertView.Stage() == convert.StagePick {
			// Pick up defaults changed in settings.
			a.convertView.Reset()
			return a.convertView.Init()
		}
	case messages.ViewHistory:
		return a.historyView.Init()
	case messages.ViewSettings:
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewConvert:
		return a.convertView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  ?           Help
  q           Quit

Convert:
  enter       Open folder / pick file / start
  tab         Next field
  ←/→         Change quality
  esc, x      Cancel a running conversion
  s           Save the PDF
  r           Retry after a failure
  n           Convert another file

History:
  r           Refresh
  c           Clear

Settings:
  t           Toggle light/dark theme
  enter       Change the selected setting

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	a.mu.Lock()
	a.program = p
	a.mu.Unlock()

	_, err := p.Run()

	a.mu.Lock()
	a.program = nil
	a.mu.Unlock()
	return err
}

// Notify delivers a message from outside the program, such as a theme
// change detected in the config file. It is a no-op unless Run is active.
func (a *App) Notify(msg tea.Msg) {
	a.mu.Lock()
	p := a.program
	a.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Styles returns the shared styles.
func (a *App) Styles() *styles.Styles {
	return a.styles
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.convertView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
