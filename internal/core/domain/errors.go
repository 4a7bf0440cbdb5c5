package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Intake Errors.

	// ErrValidation indicates the file is not an accepted office document.
	// The user can recover by choosing another file.
	ErrValidation = errors.New("unsupported file")

	// ErrUnsupportedFormat indicates no conversion routine exists for a
	// format the validator accepted. Seeing it means the validator and the
	// converter disagree about what is supported.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrReadFailed indicates the source file could not be read.
	ErrReadFailed = errors.New("failed to read file")

	// ErrOutputExists indicates the target PDF is already on disk and
	// overwriting was not requested.
	ErrOutputExists = errors.New("already exists")

	// Conversion Errors.

	// ErrConversionFailed indicates the converter could not produce a PDF.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrMalformedInput indicates the document content is corrupt or not
	// in the format its name claims.
	ErrMalformedInput = fmt.Errorf("%w: malformed document", ErrConversionFailed)

	// ErrCancelled indicates the user cancelled an in-flight conversion.
	ErrCancelled = errors.New("conversion cancelled")

	// Orchestration Errors.

	// ErrConversionInProgress indicates a request is already validating or running.
	ErrConversionInProgress = errors.New("conversion in progress")

	// ErrInvalidState indicates an operation is not legal in the current state.
	ErrInvalidState = errors.New("invalid state")
)
