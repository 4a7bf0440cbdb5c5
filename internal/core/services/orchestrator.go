package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// Ensure ConversionOrchestrator implements the interface.
var _ driving.ConversionOrchestrator = (*ConversionOrchestrator)(nil)

// ConversionOrchestrator runs one conversion at a time.
//
// Each accepted request gets a supervising goroutine, which owns the
// ProgressReporter and is the only goroutine that notifies observers,
// and a worker goroutine, which reads the file and calls the converter.
// The two communicate over channels only.
type ConversionOrchestrator struct {
	validator *Validator
	converter driven.Converter
	progress  domain.ProgressSettings
	rateLimit rate.Limit
	now       func() time.Time

	mu        sync.Mutex
	state     domain.State
	run       *conversionRun
	outcome   *domain.ConversionOutcome
	observers map[int]driving.ConversionObserver
	nextObs   int
}

// conversionRun is the request-scoped state of one submission.
type conversionRun struct {
	req       domain.ConversionRequest
	startedAt time.Time
	cancel    context.CancelFunc

	// after is the previous run's done channel. No event of this run is
	// delivered before it is closed.
	after <-chan struct{}

	// done is closed once every observer callback for the run has returned.
	done chan struct{}

	// outcome is set when the run reaches a terminal state (guarded by mu).
	outcome *domain.ConversionOutcome
}

// convertResult is what the worker hands back to the supervisor.
type convertResult struct {
	pdf []byte
	err error
}

// NewConversionOrchestrator creates an idle orchestrator.
func NewConversionOrchestrator(
	validator *Validator,
	converter driven.Converter,
	progress domain.ProgressSettings,
	observers ...driving.ConversionObserver,
) *ConversionOrchestrator {
	if validator == nil {
		validator = NewValidator()
	}
	o := &ConversionOrchestrator{
		validator: validator,
		converter: converter,
		progress:  progress,
		rateLimit: defaultProgressRate,
		now:       time.Now,
		state:     domain.StateIdle,
		observers: make(map[int]driving.ConversionObserver),
	}
	for _, obs := range observers {
		o.Subscribe(obs)
	}
	return o
}

// Subscribe registers an observer and returns a function that removes it.
func (o *ConversionOrchestrator) Subscribe(obs driving.ConversionObserver) func() {
	if obs == nil {
		return func() {}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = obs
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// Submit validates the file and starts converting it.
// Submitting from a terminal state discards the previous outcome. Submit
// never waits for the previous request's observers, so it may be called
// from an OnSuccess or OnFailure callback; events of the new request are
// held until that delivery has finished.
func (o *ConversionOrchestrator) Submit(
	ctx context.Context,
	file domain.SourceFile,
	opts domain.ConversionOptions,
) (string, error) {
	o.mu.Lock()
	if o.state.Busy() {
		o.mu.Unlock()
		return "", domain.ErrConversionInProgress
	}
	var after <-chan struct{}
	if o.run != nil {
		after = o.run.done
	}
	o.state = domain.StateValidating
	o.run = nil
	o.outcome = nil
	o.mu.Unlock()

	req := domain.ConversionRequest{
		ID:        uuid.NewString(),
		Source:    file,
		Options:   opts.Normalised(),
		CreatedAt: o.now(),
	}
	run := &conversionRun{
		req:       req,
		startedAt: req.CreatedAt,
		after:     after,
		done:      make(chan struct{}),
	}

	logger.Section("Conversion " + req.ID)
	logger.Debug("Validating %s (%d bytes, mime %q)", file.Name, file.Size, file.MIMEType)

	format, err := o.validator.Classify(file)
	if err != nil {
		logger.Info("Rejected %s: %v", file.Name, err)
		o.mu.Lock()
		o.run = run
		o.mu.Unlock()
		o.finish(run, nil, err)
		return req.ID, err
	}
	run.req.Format = format

	if o.converter == nil {
		err := fmt.Errorf("%w: no converter configured", domain.ErrConversionFailed)
		o.mu.Lock()
		o.run = run
		o.mu.Unlock()
		o.finish(run, nil, err)
		return req.ID, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	run.cancel = cancel

	o.mu.Lock()
	o.state = domain.StateRunning
	o.run = run
	o.mu.Unlock()

	logger.Info("Converting %s as %s (quality %s, encrypted %t)",
		file.Name, format, run.req.Options.Quality, run.req.Options.Encrypted())

	go o.supervise(runCtx, run)
	return req.ID, nil
}

// Cancel aborts the running request and waits for its failure to be
// delivered. If the converter finished first, the outcome stands and
// Cancel returns ErrInvalidState.
func (o *ConversionOrchestrator) Cancel() error {
	o.mu.Lock()
	if o.state != domain.StateRunning {
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot cancel while %s", domain.ErrInvalidState, state)
	}
	run := o.run
	o.mu.Unlock()

	run.cancel()
	<-run.done

	o.mu.Lock()
	outcome := run.outcome
	o.mu.Unlock()
	if outcome == nil || outcome.Failure == nil || outcome.Failure.Kind != domain.FailureCancelled {
		return fmt.Errorf("%w: request already finished", domain.ErrInvalidState)
	}
	return nil
}

// Reset returns a finished orchestrator to Idle, discarding the outcome.
func (o *ConversionOrchestrator) Reset() error {
	o.mu.Lock()
	if !o.state.Terminal() {
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot reset while %s", domain.ErrInvalidState, state)
	}
	run := o.run
	o.mu.Unlock()

	if run != nil {
		<-run.done
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run != run {
		return fmt.Errorf("%w: a new request started during reset", domain.ErrInvalidState)
	}
	o.state = domain.StateIdle
	o.run = nil
	o.outcome = nil
	return nil
}

// State returns the current lifecycle state.
func (o *ConversionOrchestrator) State() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Outcome returns a copy of the terminal outcome, or nil.
func (o *ConversionOrchestrator) Outcome() *domain.ConversionOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcome == nil {
		return nil
	}
	out := *o.outcome
	return &out
}

// Current returns the summary of the active or finished request.
func (o *ConversionOrchestrator) Current() (domain.RequestSummary, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return domain.RequestSummary{}, false
	}
	return o.run.req.Summary(), true
}

// supervise owns the reporter for one run and delivers its outcome.
func (o *ConversionOrchestrator) supervise(ctx context.Context, run *conversionRun) {
	defer run.cancel()

	if run.after != nil {
		select {
		case <-run.after:
		case <-ctx.Done():
			o.finish(run, nil, cancelErr(ctx))
			return
		}
	}

	signals := make(chan float64, 16)
	results := make(chan convertResult, 1)

	reporter := NewProgressReporter(run.req.ID, o.progress, o.rateLimit, func(ev domain.ProgressEvent) {
		o.notifyProgress(ev)
	})

	go o.work(ctx, run.req, signals, results)
	reporter.Start()

	for {
		select {
		case <-reporter.C():
			reporter.Tick()
		case f := <-signals:
			reporter.Report(f)
		case res := <-results:
			switch {
			case ctx.Err() != nil:
				reporter.Stop()
				o.finish(run, nil, cancelErr(ctx))
			case res.err != nil:
				reporter.Stop()
				o.finish(run, nil, res.err)
			default:
				reporter.Complete()
				o.finish(run, res.pdf, nil)
			}
			return
		case <-ctx.Done():
			reporter.Stop()
			o.finish(run, nil, cancelErr(ctx))
			return
		}
	}
}

// work reads the source and runs the converter. It never touches
// orchestrator state.
func (o *ConversionOrchestrator) work(
	ctx context.Context,
	req domain.ConversionRequest,
	signals chan<- float64,
	results chan<- convertResult,
) {
	defer func() {
		if p := recover(); p != nil {
			results <- convertResult{err: fmt.Errorf("%w: converter panicked: %v", domain.ErrConversionFailed, p)}
		}
	}()

	content, err := readSource(req.Source)
	if err != nil {
		results <- convertResult{err: err}
		return
	}

	progress := func(f float64) {
		select {
		case signals <- f:
		default:
		}
	}

	pdf, err := o.converter.Convert(ctx, driven.ConvertInput{
		Name:    req.Source.Name,
		Content: content,
		Format:  req.Format,
		Options: req.Options,
	}, progress)
	if err == nil && len(pdf) == 0 {
		err = fmt.Errorf("%w: converter returned an empty document", domain.ErrConversionFailed)
	}
	results <- convertResult{pdf: pdf, err: err}
}

// finish records the terminal state, then notifies observers and releases
// anyone waiting on the run. Delivery moves to its own goroutine while the
// previous run is still delivering, so a Submit made from a callback
// cannot wait on itself.
func (o *ConversionOrchestrator) finish(run *conversionRun, pdf []byte, err error) {
	outcome := domain.ConversionOutcome{
		RequestID:  run.req.ID,
		Request:    run.req.Summary(),
		StartedAt:  run.startedAt,
		FinishedAt: o.now(),
	}
	state := domain.StateSucceeded
	if err != nil {
		state = domain.StateFailed
		outcome.Failure = domain.NewFailure(err)
		if outcome.Failure.Kind == domain.FailureUnsupportedFormat {
			logger.Warn("Format %s passed validation but has no converter", run.req.Format)
		}
		logger.Info("Conversion %s failed (%s): %s", run.req.ID, outcome.Failure.Kind, outcome.Failure.Reason)
	} else {
		outcome.Success = &domain.Success{
			PDF:      pdf,
			Filename: domain.OutputFilename(run.req.Source.Name),
		}
		logger.Info("Conversion %s succeeded: %s (%d bytes) in %s",
			run.req.ID, outcome.Success.Filename, len(pdf), outcome.Duration())
	}

	o.mu.Lock()
	o.state = state
	o.outcome = &outcome
	run.outcome = &outcome
	observers := o.snapshotObservers()
	o.mu.Unlock()

	if run.waiting() {
		go o.deliver(run, outcome, observers)
		return
	}
	o.deliver(run, outcome, observers)
}

func (o *ConversionOrchestrator) deliver(
	run *conversionRun,
	outcome domain.ConversionOutcome,
	observers []driving.ConversionObserver,
) {
	if run.after != nil {
		<-run.after
	}
	for _, obs := range observers {
		if outcome.Success != nil {
			obs.OnSuccess(outcome)
		} else {
			obs.OnFailure(outcome)
		}
	}
	close(run.done)
}

// waiting reports whether the previous run is still delivering.
func (r *conversionRun) waiting() bool {
	if r.after == nil {
		return false
	}
	select {
	case <-r.after:
		return false
	default:
		return true
	}
}

func (o *ConversionOrchestrator) notifyProgress(ev domain.ProgressEvent) {
	o.mu.Lock()
	observers := o.snapshotObservers()
	o.mu.Unlock()

	for _, obs := range observers {
		obs.OnProgress(ev)
	}
}

// snapshotObservers returns observers in subscription order (caller must hold lock).
func (o *ConversionOrchestrator) snapshotObservers() []driving.ConversionObserver {
	out := make([]driving.ConversionObserver, 0, len(o.observers))
	for id := 0; id < o.nextObs; id++ {
		if obs, ok := o.observers[id]; ok {
			out = append(out, obs)
		}
	}
	return out
}

// readSource loads the whole file into memory.
func readSource(file domain.SourceFile) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		if errors.Is(err, domain.ErrReadFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrReadFailed, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReadFailed, err)
	}
	return data, nil
}

// cancelErr maps a context error onto ErrCancelled.
func cancelErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: deadline exceeded", domain.ErrCancelled)
	}
	return domain.ErrCancelled
}
