package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.ConversionRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]domain.ConversionRecord),
	}
}

// Save stores or replaces a record.
func (s *HistoryStore) Save(_ context.Context, rec domain.ConversionRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

// Get retrieves a record by ID.
func (s *HistoryStore) Get(_ context.Context, id string) (*domain.ConversionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// List returns records newest first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.ConversionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sorted()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes all records.
func (s *HistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.ConversionRecord)
	return nil
}

// Prune keeps only the most recent 'keep' records.
func (s *HistoryStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted()
	if keep < 0 {
		keep = 0
	}
	for _, rec := range all[min(keep, len(all)):] {
		delete(s.records, rec.ID)
	}
	return nil
}

// sorted returns all records newest first (caller must hold lock).
func (s *HistoryStore) sorted() []domain.ConversionRecord {
	out := make([]domain.ConversionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinishedAt.Equal(out[j].FinishedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out
}
