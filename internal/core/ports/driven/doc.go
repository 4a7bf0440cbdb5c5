// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Converter: Turns office document bytes into PDF bytes
//   - ConfigStore: User preferences (theme, conversion defaults)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HistoryStore: Conversion history. Without it, nothing is recorded.
//
// Extractor and PDFRenderer are the building blocks the converter
// registry composes; core never calls them directly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or converter package
package driven
