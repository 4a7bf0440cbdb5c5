package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// MockHistoryService is a mock implementation of driving.HistoryService.
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversionRecord), args.Error(1)
}

func (m *MockHistoryService) Get(ctx context.Context, id string) (*domain.ConversionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionRecord), args.Error(1)
}

func (m *MockHistoryService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testRecords() []domain.ConversionRecord {
	now := time.Now()
	return []domain.ConversionRecord{
		{
			ID:          "b",
			SourceName:  "broken.pptx",
			SourceSize:  1000,
			Status:      domain.StatusFailed,
			FailureKind: domain.FailureConversion,
			Reason:      "conversion failed: malformed document",
			FinishedAt:  now,
		},
		{
			ID:         "a",
			SourceName: "report.docx",
			SourceSize: 2048,
			Encrypted:  true,
			Status:     domain.StatusSucceeded,
			OutputName: "report.pdf",
			FinishedAt: now.Add(-time.Hour),
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_LoadsRecords(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("List", mock.Anything, pageSize).Return(testRecords(), nil)
	view := NewView(nil, svc)
	view.SetDimensions(120, 30)

	assert.Contains(t, view.View(), "Loading history")

	view.Update(view.Init()())

	require.Len(t, view.Records(), 2)
	output := view.View()
	assert.Contains(t, output, "broken.pptx")
	assert.Contains(t, output, "report.pdf (locked)")
	assert.Contains(t, output, "malformed document", "the selected failure shows its reason")
	svc.AssertExpectations(t)
}

func TestView_Empty(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("List", mock.Anything, pageSize).Return(nil, nil)
	view := NewView(nil, svc)

	view.Update(view.Init()())

	assert.Contains(t, view.View(), "No conversions recorded.")
}

func TestView_Disabled(t *testing.T) {
	view := NewView(nil, nil)

	view.Update(view.Init()())

	assert.Contains(t, view.View(), "history is disabled")
	assert.Nil(t, view.clear())
}

func TestView_LoadError(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("List", mock.Anything, pageSize).Return(nil, errors.New("database is locked"))
	view := NewView(nil, svc)

	view.Update(view.Init()())

	assert.Contains(t, view.View(), "database is locked")
}

func TestView_Navigate(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(120, 30)
	view.Update(messages.HistoryLoaded{Records: testRecords()})

	r, ok := view.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", r.ID)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})

	r, ok = view.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", r.ID)
}

func TestView_Refresh(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("List", mock.Anything, pageSize).Return(testRecords(), nil)
	view := NewView(nil, svc)

	_, cmd := view.Update(runes("r"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.HistoryLoaded)

	require.True(t, ok)
	assert.Len(t, msg.Records, 2)
}

func TestView_ClearAsksFirst(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("Clear", mock.Anything).Return(nil)
	view := NewView(nil, svc)
	view.Update(messages.HistoryLoaded{Records: testRecords()})

	_, cmd := view.Update(runes("c"))
	assert.Nil(t, cmd)
	assert.True(t, view.Confirming())
	assert.Contains(t, view.View(), "Clear all history?")

	_, cmd = view.Update(runes("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.HistoryCleared{}, msg)

	view.Update(msg)
	assert.Empty(t, view.Records())
	svc.AssertExpectations(t)
}

func TestView_ClearDeclined(t *testing.T) {
	svc := new(MockHistoryService)
	view := NewView(nil, svc)
	view.Update(messages.HistoryLoaded{Records: testRecords()})

	view.Update(runes("c"))
	_, cmd := view.Update(runes("n"))

	assert.Nil(t, cmd)
	assert.False(t, view.Confirming())
	assert.Len(t, view.Records(), 2)
	svc.AssertNotCalled(t, "Clear", mock.Anything)
}

func TestView_ClearError(t *testing.T) {
	view := NewView(nil, nil)
	view.Update(messages.HistoryLoaded{Records: testRecords()})

	view.Update(messages.HistoryCleared{Err: errors.New("read-only database")})

	assert.Len(t, view.Records(), 2)
	assert.Contains(t, view.View(), "read-only database")
}

func TestView_ReloadsAfterConversion(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(messages.ConversionFinished{})

	assert.NotNil(t, cmd)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
