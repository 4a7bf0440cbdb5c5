package services

import (
	"context"
	"time"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
	"github.com/custodia-labs/officepdf/internal/core/ports/driving"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driving.ConversionObserver = (*HistoryRecorder)(nil)
	_ driving.HistoryService     = (*HistoryService)(nil)
)

// historyWriteTimeout bounds a single history write.
const historyWriteTimeout = 5 * time.Second

// HistoryRecorder is a ConversionObserver that persists every outcome.
// Storage errors are logged, never surfaced to the conversion.
type HistoryRecorder struct {
	store driven.HistoryStore
	keep  int
}

// NewHistoryRecorder creates a recorder that retains at most keep records.
// A keep of zero or less disables pruning.
func NewHistoryRecorder(store driven.HistoryStore, keep int) *HistoryRecorder {
	return &HistoryRecorder{store: store, keep: keep}
}

// OnProgress implements driving.ConversionObserver.
func (h *HistoryRecorder) OnProgress(domain.ProgressEvent) {}

// OnSuccess implements driving.ConversionObserver.
func (h *HistoryRecorder) OnSuccess(o domain.ConversionOutcome) {
	h.record(o)
}

// OnFailure implements driving.ConversionObserver.
func (h *HistoryRecorder) OnFailure(o domain.ConversionOutcome) {
	h.record(o)
}

func (h *HistoryRecorder) record(o domain.ConversionOutcome) {
	if h.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	if err := h.store.Save(ctx, domain.RecordFromOutcome(o)); err != nil {
		logger.Warn("Failed to record conversion %s: %v", o.RequestID, err)
		return
	}
	if h.keep > 0 {
		if err := h.store.Prune(ctx, h.keep); err != nil {
			logger.Warn("Failed to prune conversion history: %v", err)
		}
	}
}

// HistoryService exposes stored conversions.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service. A nil store yields an
// always-empty history.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns the most recent records, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx, limit)
}

// Get returns one record by request ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.ConversionRecord, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Clear removes all records.
func (s *HistoryService) Clear(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}
