package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// failingHistoryStore returns an error from every write.
type failingHistoryStore struct {
	*memory.HistoryStore
}

func (f failingHistoryStore) Save(context.Context, domain.ConversionRecord) error {
	return errors.New("disk full")
}

func outcomeAt(id string, finished time.Time) domain.ConversionOutcome {
	return domain.ConversionOutcome{
		RequestID:  id,
		Request:    domain.RequestSummary{ID: id, SourceName: id + ".docx", Format: domain.FormatDOCX},
		Success:    &domain.Success{PDF: []byte("%PDF"), Filename: id + ".pdf"},
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
	}
}

func TestHistoryRecorder_RecordsAndPrunes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()
	rec := NewHistoryRecorder(store, 2)
	base := time.Now()

	for i := 0; i < 3; i++ {
		rec.OnSuccess(outcomeAt(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second)))
	}
	rec.OnProgress(domain.ProgressEvent{RequestID: "r0", Percent: 50})

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ID)
	assert.Equal(t, "r1", records[1].ID)
}

func TestHistoryRecorder_RecordsFailure(t *testing.T) {
	store := memory.NewHistoryStore()
	rec := NewHistoryRecorder(store, 0)

	rec.OnFailure(domain.ConversionOutcome{
		RequestID: "bad",
		Request:   domain.RequestSummary{SourceName: "image.png"},
		Failure:   domain.NewFailure(fmt.Errorf("%w: image.png", domain.ErrValidation)),
	})

	got, err := store.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, domain.FailureValidation, got.FailureKind)
}

func TestHistoryRecorder_StoreErrorsAreSwallowed(t *testing.T) {
	rec := NewHistoryRecorder(failingHistoryStore{memory.NewHistoryStore()}, 5)
	assert.NotPanics(t, func() {
		rec.OnSuccess(outcomeAt("x", time.Now()))
	})

	nilStore := NewHistoryRecorder(nil, 5)
	assert.NotPanics(t, func() {
		nilStore.OnSuccess(outcomeAt("x", time.Now()))
	})
}

func TestHistoryService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()
	require.NoError(t, store.Save(ctx, domain.RecordFromOutcome(outcomeAt("a", time.Now()))))

	svc := NewHistoryService(store)

	list, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.OutputName)

	require.NoError(t, svc.Clear(ctx))
	list, err = svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHistoryService_NilStore(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(nil)

	list, err := svc.List(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, svc.Clear(ctx))
}
