package driven

import (
	"context"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// HistoryStore persists finished conversions.
type HistoryStore interface {
	// Save stores a record, replacing any record with the same ID.
	Save(ctx context.Context, rec domain.ConversionRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ConversionRecord, error)

	// List returns records ordered by finish time, most recent first.
	// A limit of zero or less returns all records.
	List(ctx context.Context, limit int) ([]domain.ConversionRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Prune keeps only the most recent 'keep' records.
	Prune(ctx context.Context, keep int) error
}
