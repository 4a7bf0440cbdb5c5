package domain

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// FailureKind classifies why a conversion did not produce a PDF.
type FailureKind string

// Failure kinds.
const (
	FailureValidation        FailureKind = "validation"
	FailureUnsupportedFormat FailureKind = "unsupported_format"
	FailureConversion        FailureKind = "conversion"
	FailureRead              FailureKind = "read"
	FailureCancelled         FailureKind = "cancelled"
)

// String returns the string representation.
func (k FailureKind) String() string {
	return string(k)
}

// Retryable returns true if resubmitting the same file may succeed.
func (k FailureKind) Retryable() bool {
	return k == FailureConversion || k == FailureRead || k == FailureCancelled
}

// FailureKindOf maps an error to its failure kind.
func FailureKindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrUnsupportedFormat):
		return FailureUnsupportedFormat
	case errors.Is(err, ErrCancelled):
		return FailureCancelled
	case errors.Is(err, ErrReadFailed):
		return FailureRead
	default:
		return FailureConversion
	}
}

// Success is the payload of a successful conversion.
type Success struct {
	// PDF is the generated document.
	PDF []byte

	// Filename is the suggested output name.
	Filename string
}

// Failure is the payload of an unsuccessful conversion.
type Failure struct {
	// Kind classifies the failure.
	Kind FailureKind

	// Reason is a human-readable message.
	Reason string

	// Err is the underlying error, for errors.Is checks.
	Err error
}

// Error implements error so a Failure can be returned directly.
func (f *Failure) Error() string {
	return f.Reason
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// ConversionOutcome is the single terminal result of a request.
// Exactly one of Success and Failure is non-nil.
type ConversionOutcome struct {
	RequestID  string
	Request    RequestSummary
	Success    *Success
	Failure    *Failure
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns true if the outcome carries a PDF.
func (o *ConversionOutcome) Succeeded() bool {
	return o != nil && o.Success != nil
}

// Duration returns how long the request took.
func (o *ConversionOutcome) Duration() time.Duration {
	if o == nil || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// NewFailure builds a Failure from an error, classifying it.
func NewFailure(err error) *Failure {
	return &Failure{Kind: FailureKindOf(err), Reason: err.Error(), Err: err}
}

// OutputFilename derives the PDF name from a source filename by replacing
// its trailing extension. A name with an empty stem becomes "document.pdf".
func OutputFilename(source string) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(stem) == "" {
		stem = "document"
	}
	return stem + ".pdf"
}
