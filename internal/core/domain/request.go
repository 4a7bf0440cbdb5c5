package domain

import "time"

// Quality selects the render profile used by the converter.
type Quality string

// Available quality levels.
const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// DefaultQuality is used when no quality is configured.
const DefaultQuality = QualityMedium

// AllQualities returns the quality levels from lowest to highest.
func AllQualities() []Quality {
	return []Quality{QualityLow, QualityMedium, QualityHigh}
}

// IsValid returns true if the quality level is recognised.
func (q Quality) IsValid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (q Quality) String() string {
	return string(q)
}

// Next cycles to the following quality level, wrapping around.
func (q Quality) Next() Quality {
	switch q {
	case QualityLow:
		return QualityMedium
	case QualityMedium:
		return QualityHigh
	default:
		return QualityLow
	}
}

// ConversionOptions are the user-chosen settings for one conversion.
type ConversionOptions struct {
	// Password encrypts the PDF when non-empty.
	Password string

	// Quality selects the render profile. Empty means DefaultQuality.
	Quality Quality
}

// Encrypted returns true if the output will be password protected.
func (o ConversionOptions) Encrypted() bool {
	return o.Password != ""
}

// Normalised returns a copy with defaults applied.
func (o ConversionOptions) Normalised() ConversionOptions {
	if !o.Quality.IsValid() {
		o.Quality = DefaultQuality
	}
	return o
}

// ConversionRequest is one validated unit of work.
// It is immutable once created and owned by the orchestrator.
type ConversionRequest struct {
	// ID uniquely identifies the request.
	ID string

	// Source is the input document.
	Source SourceFile

	// Format is the validated format tag.
	Format Format

	// Options are the conversion settings.
	Options ConversionOptions

	// CreatedAt is when the request was accepted.
	CreatedAt time.Time
}

// Summary returns the non-secret description of the request.
func (r ConversionRequest) Summary() RequestSummary {
	return RequestSummary{
		ID:         r.ID,
		SourceName: r.Source.Name,
		SourceSize: r.Source.Size,
		Format:     r.Format,
		Quality:    r.Options.Quality,
		Encrypted:  r.Options.Encrypted(),
		CreatedAt:  r.CreatedAt,
	}
}

// RequestSummary describes a request without its content or password.
type RequestSummary struct {
	ID         string
	SourceName string
	SourceSize int64
	Format     Format
	Quality    Quality
	Encrypted  bool
	CreatedAt  time.Time
}
