package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := NewBar(s, km)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Update(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
	assert.Nil(t, bar.Init())
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		contains string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "report.docx (12 kB)", "report.docx"},
		{"converting", StateConverting, "", "Converting..."},
		{"succeeded", StateSucceeded, "", "Done"},
		{"error", StateError, "disk full", "Error: disk full"},
		{"error without message", StateError, "", "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestStatusBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)

	assert.Contains(t, bar.View(), "q: quit")

	bar.SetHints([]key.Binding{km.Save})
	view := bar.View()
	assert.Contains(t, view, "s: save pdf")
	assert.NotContains(t, view, "q: quit")
}

func TestStatusBar_SingleLine(t *testing.T) {
	km := keymap.DefaultKeyMap()
	tests := []struct {
		name  string
		hints []key.Binding
	}{
		{"default hints", nil},
		{"save hint", []key.Binding{km.Save}},
		{"result hints", []key.Binding{km.Save, km.NewFile, km.Quit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, km)
			bar.SetHints(tt.hints)

			view := bar.View()

			assert.NotContains(t, view, "\n")
			assert.Equal(t, bar.Width(), lipgloss.Width(view))
		})
	}
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetHints([]key.Binding{keymap.DefaultKeyMap().Retry})

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Contains(t, bar.View(), "q: quit")
}

func TestStatusBar_SetWidth(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetWidth(120)

	assert.Equal(t, 120, bar.Width())
}
