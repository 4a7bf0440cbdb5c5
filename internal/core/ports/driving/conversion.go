package driving

import (
	"context"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// ConversionOrchestrator owns the lifecycle of one conversion at a time.
//
//	Idle -> Validating -> Running -> {Succeeded, Failed}
//
// A new request is refused while one is validating or running.
type ConversionOrchestrator interface {
	// Submit validates the file and starts converting it in the background.
	// Returns the request ID. A rejected file moves the orchestrator to
	// Failed and returns an error wrapping domain.ErrValidation.
	// Returns domain.ErrConversionInProgress if a request is active.
	Submit(ctx context.Context, file domain.SourceFile, opts domain.ConversionOptions) (string, error)

	// Cancel aborts the running request, producing a cancelled failure.
	// Returns domain.ErrInvalidState unless Running.
	Cancel() error

	// Reset discards the outcome and returns to Idle.
	// Returns domain.ErrInvalidState unless Succeeded or Failed.
	Reset() error

	// State returns the current lifecycle state.
	State() domain.State

	// Outcome returns the terminal outcome, or nil before one exists.
	Outcome() *domain.ConversionOutcome

	// Current returns the active or finished request, if any.
	Current() (domain.RequestSummary, bool)

	// Subscribe registers an observer and returns a function that removes it.
	Subscribe(obs ConversionObserver) func()
}

// ConversionObserver receives request events.
//
// Callbacks for one request arrive in order, one at a time: any number
// of non-decreasing OnProgress calls, then exactly one of OnSuccess or
// OnFailure. A request's callbacks start only after the previous
// request's have returned. OnSuccess and OnFailure may call Submit;
// callbacks must not call Cancel or Reset synchronously.
type ConversionObserver interface {
	OnProgress(ev domain.ProgressEvent)
	OnSuccess(outcome domain.ConversionOutcome)
	OnFailure(outcome domain.ConversionOutcome)
}

// ObserverFuncs adapts plain functions to ConversionObserver.
// Nil fields are ignored.
type ObserverFuncs struct {
	Progress func(domain.ProgressEvent)
	Success  func(domain.ConversionOutcome)
	Failure  func(domain.ConversionOutcome)
}

// OnProgress implements ConversionObserver.
func (f ObserverFuncs) OnProgress(ev domain.ProgressEvent) {
	if f.Progress != nil {
		f.Progress(ev)
	}
}

// OnSuccess implements ConversionObserver.
func (f ObserverFuncs) OnSuccess(o domain.ConversionOutcome) {
	if f.Success != nil {
		f.Success(o)
	}
}

// OnFailure implements ConversionObserver.
func (f ObserverFuncs) OnFailure(o domain.ConversionOutcome) {
	if f.Failure != nil {
		f.Failure(o)
	}
}

// ConversionService runs complete conversions for one-shot callers
// such as the CLI and MCP tools.
type ConversionService interface {
	// Convert validates and converts a file, blocking until the outcome.
	// Progress events are forwarded to progress, which may be nil.
	// A failed conversion returns the outcome and its *domain.Failure.
	Convert(
		ctx context.Context,
		file domain.SourceFile,
		opts domain.ConversionOptions,
		progress func(domain.ProgressEvent),
	) (*domain.ConversionOutcome, error)

	// Formats returns the formats that can be converted.
	Formats() []domain.Format
}
