// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// NextField moves focus in a form.
	NextField key.Binding

	// Cancel aborts the running conversion.
	Cancel key.Binding

	// Retry resubmits the last file after a failure.
	Retry key.Binding

	// Save writes the converted PDF to disk.
	Save key.Binding

	// NewFile starts over with a different file.
	NewFile key.Binding

	// ToggleTheme switches between light and dark.
	ToggleTheme key.Binding

	// CycleQuality moves to the next quality level.
	CycleQuality key.Binding

	// Refresh reloads a list.
	Refresh key.Binding

	// Clear deletes the conversion history.
	Clear key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc/x", "cancel"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save pdf"),
		),
		NewFile: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new file"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),
		CycleQuality: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "quality"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// RunningHelp returns keybindings shown while a conversion runs.
func (k *KeyMap) RunningHelp() []key.Binding {
	return []key.Binding{k.Cancel}
}

// ResultHelp returns keybindings shown once a conversion has finished.
func (k *KeyMap) ResultHelp(succeeded bool) []key.Binding {
	if succeeded {
		return []key.Binding{k.Save, k.NewFile, k.Back}
	}
	return []key.Binding{k.Retry, k.NewFile, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.NextField, k.CycleQuality, k.Back},
		{k.Cancel, k.Retry, k.Save, k.NewFile},
		{k.ToggleTheme, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
