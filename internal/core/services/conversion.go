package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
)

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService runs blocking conversions for one-shot callers.
// Each call gets its own orchestrator, so calls may run concurrently.
type ConversionService struct {
	validator *Validator
	converter driven.Converter
	progress  domain.ProgressSettings
	observers []driving.ConversionObserver
}

// NewConversionService creates a conversion service.
// Observers are attached to every conversion, e.g. a HistoryRecorder.
func NewConversionService(
	validator *Validator,
	converter driven.Converter,
	progress domain.ProgressSettings,
	observers ...driving.ConversionObserver,
) *ConversionService {
	return &ConversionService{
		validator: validator,
		converter: converter,
		progress:  progress,
		observers: observers,
	}
}

// Convert validates and converts a file, blocking until the outcome is known.
func (s *ConversionService) Convert(
	ctx context.Context,
	file domain.SourceFile,
	opts domain.ConversionOptions,
	progress func(domain.ProgressEvent),
) (*domain.ConversionOutcome, error) {
	orch := NewConversionOrchestrator(s.validator, s.converter, s.progress, s.observers...)

	done := make(chan domain.ConversionOutcome, 1)
	orch.Subscribe(driving.ObserverFuncs{
		Progress: progress,
		Success:  func(o domain.ConversionOutcome) { done <- o },
		Failure:  func(o domain.ConversionOutcome) { done <- o },
	})

	if _, err := orch.Submit(ctx, file, opts); err != nil && !errors.Is(err, domain.ErrValidation) {
		return nil, err
	}

	outcome := <-done
	if outcome.Failure != nil {
		return &outcome, outcome.Failure
	}
	return &outcome, nil
}

// Formats returns the formats the converter handles.
func (s *ConversionService) Formats() []domain.Format {
	if s.converter == nil {
		return nil
	}
	return s.converter.Formats()
}
