package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"report.docx", "report.pdf"},
		{"budget.XLSX", "budget.pdf"},
		{"q3.final.pptx", "q3.final.pdf"},
		{"my report.doc", "my report.pdf"},
		{".docx", "document.pdf"},
		{"", "document.pdf"},
		{"/tmp/slides.ppt", "slides.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputFilename(tt.source))
		})
	}
}

func TestRecordFromOutcome_Success(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o := ConversionOutcome{
		RequestID: "req-1",
		Request: RequestSummary{
			ID:         "req-1",
			SourceName: "report.docx",
			SourceSize: 1024,
			Format:     FormatDOCX,
			Quality:    QualityHigh,
			Encrypted:  true,
		},
		Success:    &Success{PDF: []byte("%PDF-1.4"), Filename: "report.pdf"},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}

	rec := RecordFromOutcome(o)

	assert.Equal(t, "req-1", rec.ID)
	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.Equal(t, "report.pdf", rec.OutputName)
	assert.Equal(t, int64(8), rec.OutputSize)
	assert.True(t, rec.Encrypted)
	assert.Empty(t, rec.Reason)
	assert.Equal(t, 2*time.Second, o.Duration())
	assert.True(t, o.Succeeded())
}

func TestRecordFromOutcome_Failure(t *testing.T) {
	o := ConversionOutcome{
		RequestID: "req-2",
		Request:   RequestSummary{SourceName: "image.png"},
		Failure:   NewFailure(errors.Join(ErrValidation, errors.New("image.png"))),
	}

	rec := RecordFromOutcome(o)

	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, FailureValidation, rec.FailureKind)
	assert.NotEmpty(t, rec.Reason)
	assert.Empty(t, rec.OutputName)
	assert.False(t, o.Succeeded())
}

func TestState(t *testing.T) {
	assert.True(t, StateValidating.Busy())
	assert.True(t, StateRunning.Busy())
	assert.False(t, StateIdle.Busy())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateRunning.Terminal())
}
