// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewConvert picks a file, collects options and runs the conversion.
	ViewConvert
	// ViewHistory lists past conversions.
	ViewHistory
	// ViewSettings shows the theme and conversion defaults.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewConvert:
		return "convert"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ConversionSubmitted reports the result of a Submit call.
// A non-nil Err with a validation failure is followed by ConversionFinished.
type ConversionSubmitted struct {
	RequestID string
	Err       error
}

// ConversionProgress carries a progress event from the orchestrator.
type ConversionProgress struct {
	Event domain.ProgressEvent
}

// ConversionFinished carries the terminal outcome of a request.
type ConversionFinished struct {
	Outcome domain.ConversionOutcome
}

// PDFSaved signals the converted document was written to disk.
type PDFSaved struct {
	Path string
	Err  error
}

// HistoryLoaded carries the most recent conversion records.
type HistoryLoaded struct {
	Records []domain.ConversionRecord
	Err     error
}

// HistoryCleared signals the history was deleted.
type HistoryCleared struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

// ThemeChanged signals the theme preference changed, either from the
// settings view or from an external edit of the config file.
type ThemeChanged struct {
	Theme domain.Theme
}
