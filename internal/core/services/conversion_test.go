package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

func TestConversionService_Success(t *testing.T) {
	store := memory.NewHistoryStore()
	svc := NewConversionService(NewValidator(), &mockConverter{}, fastSettings(), NewHistoryRecorder(store, 10))

	var mu sync.Mutex
	var progress []int
	outcome, err := svc.Convert(context.Background(), docFile("report.docx"), domain.ConversionOptions{},
		func(ev domain.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			progress = append(progress, ev.Percent)
		})

	require.NoError(t, err)
	require.NotNil(t, outcome.Success)
	assert.Equal(t, "report.pdf", outcome.Success.Filename)

	mu.Lock()
	assert.Equal(t, 100, progress[len(progress)-1])
	mu.Unlock()

	// The recorder runs before Convert returns.
	rec, err := store.Get(context.Background(), outcome.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, rec.Status)
}

func TestConversionService_ValidationFailure(t *testing.T) {
	store := memory.NewHistoryStore()
	conv := &mockConverter{}
	svc := NewConversionService(NewValidator(), conv, fastSettings(), NewHistoryRecorder(store, 10))

	outcome, err := svc.Convert(context.Background(), docFile("image.png"), domain.ConversionOptions{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	require.NotNil(t, outcome)
	assert.Equal(t, domain.FailureValidation, outcome.Failure.Kind)
	assert.Equal(t, 0, conv.callCount())

	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.FailureValidation, records[0].FailureKind)
}

func TestConversionService_ConverterFailure(t *testing.T) {
	conv := &mockConverter{
		convert: func(context.Context, driven.ConvertInput, driven.ProgressFunc) ([]byte, error) {
			return nil, errors.New("renderer exploded")
		},
	}
	svc := NewConversionService(NewValidator(), conv, fastSettings())

	outcome, err := svc.Convert(context.Background(), docFile("budget.xlsx"), domain.ConversionOptions{}, nil)

	require.Error(t, err)
	var failure *domain.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.FailureConversion, failure.Kind)
	assert.Nil(t, outcome.Success)
}

func TestConversionService_ConcurrentCalls(t *testing.T) {
	svc := NewConversionService(NewValidator(), &mockConverter{}, fastSettings())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Convert(context.Background(), docFile("deck.pptx"), domain.ConversionOptions{}, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestConversionService_Formats(t *testing.T) {
	svc := NewConversionService(NewValidator(), &mockConverter{}, fastSettings())
	assert.Equal(t, domain.AllFormats(), svc.Formats())

	empty := NewConversionService(NewValidator(), nil, fastSettings())
	assert.Nil(t, empty.Formats())
}
