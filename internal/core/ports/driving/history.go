package driving

import (
	"context"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// HistoryService exposes past conversions.
type HistoryService interface {
	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]domain.ConversionRecord, error)

	// Get returns one record by request ID.
	Get(ctx context.Context, id string) (*domain.ConversionRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}
