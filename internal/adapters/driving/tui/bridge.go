package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Ensure ObserverBridge implements the interface.
var _ driving.ConversionObserver = (*ObserverBridge)(nil)

// eventBuffer bounds how many orchestrator events wait for the UI.
const eventBuffer = 64

// ObserverBridge turns orchestrator callbacks into Bubbletea messages.
//
// Progress is dropped when the UI falls behind; terminal outcomes are
// delivered until Close. The orchestrator must never be called from the
// goroutine that drains the bridge.
type ObserverBridge struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

// NewObserverBridge creates a bridge with a bounded buffer.
func NewObserverBridge() *ObserverBridge {
	return &ObserverBridge{
		events: make(chan tea.Msg, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Close stops delivery. Pending and later outcomes are discarded so the
// orchestrator never blocks on a UI that has exited.
func (b *ObserverBridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// OnProgress implements driving.ConversionObserver.
func (b *ObserverBridge) OnProgress(ev domain.ProgressEvent) {
	select {
	case b.events <- messages.ConversionProgress{Event: ev}:
	default:
	}
}

// OnSuccess implements driving.ConversionObserver.
func (b *ObserverBridge) OnSuccess(o domain.ConversionOutcome) {
	b.deliver(messages.ConversionFinished{Outcome: o})
}

// OnFailure implements driving.ConversionObserver.
func (b *ObserverBridge) OnFailure(o domain.ConversionOutcome) {
	b.deliver(messages.ConversionFinished{Outcome: o})
}

func (b *ObserverBridge) deliver(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// Wait returns a command that delivers the next orchestrator event.
// The receiver re-issues it after every event.
func (b *ObserverBridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}
