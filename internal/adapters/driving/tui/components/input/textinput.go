// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/styles"
)

// PasswordInput wraps a bubbles textinput that masks what is typed.
type PasswordInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewPasswordInput creates a masked input component.
func NewPasswordInput(s *styles.Styles, label string) *PasswordInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "leave empty for no password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 128
	ti.Width = 40

	return &PasswordInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     40,
	}
}

// Init initialises the input.
func (p *PasswordInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *PasswordInput) Update(msg tea.Msg) (*PasswordInput, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label and the masked field.
func (p *PasswordInput) View() string {
	label := p.styles.Normal.Render(p.label)
	if p.Focused() {
		label = p.styles.Title.Render(p.label)
	}
	field := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, " ", field)
}

// Value returns the current input value.
func (p *PasswordInput) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *PasswordInput) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *PasswordInput) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *PasswordInput) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *PasswordInput) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the input.
func (p *PasswordInput) SetWidth(width int) {
	p.width = width
	inputWidth := width - lipgloss.Width(p.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *PasswordInput) Width() int {
	return p.width
}

// Reset clears the input.
func (p *PasswordInput) Reset() {
	p.textinput.Reset()
}
