// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The conversion pipeline lives here: Validator decides what is accepted,
// ProgressReporter turns converter signals into percentages, and
// ConversionOrchestrator runs one request at a time on a worker goroutine.
package services
