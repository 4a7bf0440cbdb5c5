package domain

// State is the orchestrator's lifecycle position.
//
//	Idle -> Validating -> Running -> {Succeeded, Failed}
//	Validating -> Failed (validation rejected)
//	{Succeeded, Failed} -> Idle (reset)
type State string

// Orchestrator states.
const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// String returns the string representation.
func (s State) String() string {
	return string(s)
}

// Busy returns true while a request occupies the orchestrator.
func (s State) Busy() bool {
	return s == StateValidating || s == StateRunning
}

// Terminal returns true once a request has an outcome.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ProgressEvent reports the completion percentage of a request.
// Percent values are non-decreasing within one request.
type ProgressEvent struct {
	RequestID string
	Percent   int
}

// Progress bounds.
const (
	ProgressAccepted = 10
	ProgressComplete = 100
)
