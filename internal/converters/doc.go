// Package converters turns office documents into PDFs.
//
// A Registry maps each format to an Extractor that reads the document
// into a format-neutral layout, then hands the layout to a PDF renderer.
// Extractors live in subpackages, one per container family:
//
//	docx    Word 2007+ documents
//	xlsx    Excel 2007+ workbooks
//	pptx    PowerPoint 2007+ presentations
//	legacy  Word, Excel and PowerPoint 97-2003 binary files
//
// RegisterDefaults wires all of them.
package converters
