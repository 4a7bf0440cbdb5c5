package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/logger"
)

var tuiStartDir string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Pick a document, choose a password and quality, watch the conversion and
save the PDF. Past conversions and the light/dark theme are one key away.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Convert
  Esc      - Back / Cancel
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiStartDir, "dir", "", "directory the file picker opens in")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("tui crashed")
		}
	}()

	if newOrchestrator == nil {
		return errNotConfigured("conversion")
	}
	orchestrator := newOrchestrator()

	ports := &tui.Ports{
		Orchestrator: orchestrator,
		History:      historyService,
		Settings:     settingsService,
		StartDir:     tuiStartDir,
	}
	if conversionService != nil {
		ports.Formats = conversionService.Formats()
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()
	app.WithContext(cmd.Context())

	// Follow theme edits made to the config file while the UI is open.
	done := make(chan struct{})
	defer close(done)
	if configWatcher != nil && settingsService != nil {
		go func() {
			err := configWatcher.Watch(done, func() {
				app.Notify(messages.ThemeChanged{Theme: settingsService.Theme()})
			})
			if err != nil {
				logger.Warn("Config watcher stopped: %v", err)
			}
		}()
	}

	runErr := app.Run()

	// Leave nothing running behind the closed UI.
	if orchestrator.State() == domain.StateRunning {
		if err := orchestrator.Cancel(); err != nil {
			logger.Debug("Cancel on exit: %v", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
