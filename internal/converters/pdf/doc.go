// Package pdf renders a domain.Layout as a PDF document.
//
// Rendering uses github.com/go-pdf/fpdf with the core Helvetica fonts and a
// Windows-1252 translator, so no font files are needed at runtime.
// A non-empty password enables the PDF Standard Security Handler.
//
// Inspect reads generated documents back with github.com/ledongthuc/pdf.
package pdf
