package domain

import "time"

// ConversionStatus is the persisted result of a conversion.
type ConversionStatus string

// Conversion statuses.
const (
	StatusSucceeded ConversionStatus = "succeeded"
	StatusFailed    ConversionStatus = "failed"
)

// ConversionRecord is a history entry for a finished conversion.
// Neither document content nor passwords are recorded.
type ConversionRecord struct {
	// ID is the request identifier.
	ID string `json:"id" yaml:"id"`

	// SourceName is the input filename.
	SourceName string `json:"source_name" yaml:"source_name"`

	// SourceSize is the input size in bytes.
	SourceSize int64 `json:"source_size" yaml:"source_size"`

	// Format is the validated input format. Empty for validation failures.
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`

	// Quality is the render profile used.
	Quality Quality `json:"quality,omitempty" yaml:"quality,omitempty"`

	// Encrypted indicates the output was password protected.
	Encrypted bool `json:"encrypted" yaml:"encrypted"`

	// Status is succeeded or failed.
	Status ConversionStatus `json:"status" yaml:"status"`

	// FailureKind classifies a failure. Empty on success.
	FailureKind FailureKind `json:"failure_kind,omitempty" yaml:"failure_kind,omitempty"`

	// Reason is the failure message. Empty on success.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// OutputName is the PDF filename. Empty on failure.
	OutputName string `json:"output_name,omitempty" yaml:"output_name,omitempty"`

	// OutputSize is the PDF size in bytes.
	OutputSize int64 `json:"output_size,omitempty" yaml:"output_size,omitempty"`

	// StartedAt is when the request was accepted.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// FinishedAt is when the outcome was produced.
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// RecordFromOutcome builds a history record from an outcome.
func RecordFromOutcome(o ConversionOutcome) ConversionRecord {
	rec := ConversionRecord{
		ID:         o.RequestID,
		SourceName: o.Request.SourceName,
		SourceSize: o.Request.SourceSize,
		Format:     o.Request.Format,
		Quality:    o.Request.Quality,
		Encrypted:  o.Request.Encrypted,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
	}
	switch {
	case o.Success != nil:
		rec.Status = StatusSucceeded
		rec.OutputName = o.Success.Filename
		rec.OutputSize = int64(len(o.Success.PDF))
	case o.Failure != nil:
		rec.Status = StatusFailed
		rec.FailureKind = o.Failure.Kind
		rec.Reason = o.Failure.Reason
	}
	return rec
}

// DefaultHistoryKeep is how many records are retained by default.
const DefaultHistoryKeep = 200
