package domain

import "strings"

// Format identifies a supported office document format.
// It is derived once at validation time and passed downward so that
// later stages never re-parse filenames.
type Format string

// Supported formats.
const (
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
	FormatPPT  Format = "ppt"
	FormatPPTX Format = "pptx"
)

// Family groups formats by the office application that produces them.
type Family string

// Format families.
const (
	FamilyWord       Family = "word"
	FamilyExcel      Family = "excel"
	FamilyPowerPoint Family = "powerpoint"
)

// MIME types for the supported formats.
const (
	MIMEDOC  = "application/msword"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXLS  = "application/vnd.ms-excel"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPPT  = "application/vnd.ms-powerpoint"
	MIMEPPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MIMEPDF  = "application/pdf"
)

type formatInfo struct {
	mime   string
	family Family
	legacy bool
	label  string
}

var formats = map[Format]formatInfo{
	FormatDOC:  {mime: MIMEDOC, family: FamilyWord, legacy: true, label: "Word 97-2003 Document"},
	FormatDOCX: {mime: MIMEDOCX, family: FamilyWord, label: "Word Document"},
	FormatXLS:  {mime: MIMEXLS, family: FamilyExcel, legacy: true, label: "Excel 97-2003 Workbook"},
	FormatXLSX: {mime: MIMEXLSX, family: FamilyExcel, label: "Excel Workbook"},
	FormatPPT:  {mime: MIMEPPT, family: FamilyPowerPoint, legacy: true, label: "PowerPoint 97-2003 Presentation"},
	FormatPPTX: {mime: MIMEPPTX, family: FamilyPowerPoint, label: "PowerPoint Presentation"},
}

// AllFormats returns every supported format in display order.
func AllFormats() []Format {
	return []Format{FormatDOC, FormatDOCX, FormatXLS, FormatXLSX, FormatPPT, FormatPPTX}
}

// IsValid returns true if the format is supported.
func (f Format) IsValid() bool {
	_, ok := formats[f]
	return ok
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// Extension returns the filename extension including the leading dot.
func (f Format) Extension() string {
	if !f.IsValid() {
		return ""
	}
	return "." + string(f)
}

// MIMEType returns the canonical MIME type of the format.
func (f Format) MIMEType() string {
	return formats[f].mime
}

// Family returns the office application family of the format.
func (f Format) Family() Family {
	return formats[f].family
}

// Legacy returns true for the pre-2007 binary formats.
func (f Format) Legacy() bool {
	return formats[f].legacy
}

// Counterpart returns the format of the same family in the other
// container generation (docx for doc, doc for docx).
func (f Format) Counterpart() Format {
	for _, other := range AllFormats() {
		if other != f && other.Family() == f.Family() {
			return other
		}
	}
	return ""
}

// Description returns a human-readable name of the format.
func (f Format) Description() string {
	info, ok := formats[f]
	if !ok {
		return unknownDescription
	}
	return info.label
}

// FormatFromExtension maps a filename extension (with or without the
// leading dot, any case) to a format.
func FormatFromExtension(ext string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimPrefix(ext, ".")))
	if !f.IsValid() {
		return "", false
	}
	return f, true
}

// FormatFromMIME maps a bare MIME type (no parameters) to a format.
func FormatFromMIME(mimeType string) (Format, bool) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, f := range AllFormats() {
		if formats[f].mime == mimeType {
			return f, true
		}
	}
	return "", false
}

const unknownDescription = "Unknown"
