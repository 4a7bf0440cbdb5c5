// Package domain defines the core business entities for officepdf.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Format: A supported office document format (doc, docx, xls, ...)
//   - SourceFile: The opaque input handle chosen by the user
//   - ConversionRequest: One validated unit of work
//   - ConversionOutcome: The single terminal result of a request
//   - ProgressEvent: A percentage update for an in-flight request
//   - Layout: The intermediate document model rendered to PDF
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
