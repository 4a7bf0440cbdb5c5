package services

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// defaultProgressRate caps progress emissions per second.
const defaultProgressRate = 20

// realProgressCeiling is the highest percentage real signals map to.
// 100 is reserved for a delivered success.
const realProgressCeiling = 99

// ProgressReporter turns converter signals into monotonic percentages
// for one request.
//
// It is driven by a single goroutine: the request's supervisor selects on
// C and calls Tick, Report, Complete and Stop. Until the converter sends
// its first real signal, each tick advances a synthetic value by Step up
// to Ceiling.
type ProgressReporter struct {
	requestID string
	cfg       domain.ProgressSettings
	emit      func(domain.ProgressEvent)
	limiter   *rate.Limiter
	ticker    *time.Ticker

	last      int
	pending   int
	synthetic int
	real      bool
	stopped   bool
}

// NewProgressReporter creates a reporter that calls emit for every
// accepted percentage. A zero limit disables throttling.
func NewProgressReporter(
	requestID string,
	cfg domain.ProgressSettings,
	limit rate.Limit,
	emit func(domain.ProgressEvent),
) *ProgressReporter {
	defaults := domain.DefaultProgressSettings()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Step <= 0 {
		cfg.Step = defaults.Step
	}
	if cfg.Ceiling <= domain.ProgressAccepted || cfg.Ceiling >= domain.ProgressComplete {
		cfg.Ceiling = defaults.Ceiling
	}
	if limit <= 0 {
		limit = rate.Inf
	}
	return &ProgressReporter{
		requestID: requestID,
		cfg:       cfg,
		emit:      emit,
		limiter:   rate.NewLimiter(limit, 1),
		last:      -1,
	}
}

// Start emits the accepted percentage and starts the synthetic ticker.
func (r *ProgressReporter) Start() {
	if r.stopped || r.ticker != nil {
		return
	}
	r.synthetic = domain.ProgressAccepted
	r.send(domain.ProgressAccepted)
	r.ticker = time.NewTicker(r.cfg.Interval)
}

// C returns the ticker channel, or nil once stopped.
// Receiving from a nil channel blocks forever, so a stopped
// reporter drops out of the supervisor's select.
func (r *ProgressReporter) C() <-chan time.Time {
	if r.ticker == nil {
		return nil
	}
	return r.ticker.C
}

// Tick advances synthetic progress and flushes throttled values.
func (r *ProgressReporter) Tick() {
	if r.stopped {
		return
	}
	if !r.real && r.synthetic < r.cfg.Ceiling {
		r.synthetic = min(r.synthetic+r.cfg.Step, r.cfg.Ceiling)
		r.offer(r.synthetic)
		return
	}
	if r.pending > r.last {
		r.offer(r.pending)
	}
}

// Report records a real completion fraction from the converter.
// Fractions map linearly onto [accepted, 99].
func (r *ProgressReporter) Report(fraction float64) {
	if r.stopped {
		return
	}
	r.real = true
	fraction = max(0, min(fraction, 1))
	span := realProgressCeiling - domain.ProgressAccepted
	r.offer(domain.ProgressAccepted + int(fraction*float64(span)))
}

// Complete emits 100 and stops the reporter.
func (r *ProgressReporter) Complete() {
	if r.stopped {
		return
	}
	r.send(domain.ProgressComplete)
	r.Stop()
}

// Stop halts the ticker without emitting 100. Safe to call repeatedly.
func (r *ProgressReporter) Stop() {
	r.stopped = true
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

// Last returns the most recently emitted percentage, or -1.
func (r *ProgressReporter) Last() int {
	return r.last
}

// offer emits p if it advances progress and the rate limit allows,
// otherwise holds it for the next tick.
func (r *ProgressReporter) offer(p int) {
	if p <= r.last {
		return
	}
	if !r.limiter.Allow() {
		r.pending = max(r.pending, p)
		return
	}
	r.send(p)
}

func (r *ProgressReporter) send(p int) {
	if p <= r.last {
		return
	}
	r.last = p
	r.pending = 0
	if r.emit != nil {
		r.emit(domain.ProgressEvent{RequestID: r.requestID, Percent: p})
	}
}
