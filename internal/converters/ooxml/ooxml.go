// Package ooxml holds helpers shared by the Office Open XML extractors:
// archive access, core document properties and XML attribute lookup.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// maxPartSize bounds how much of a single archive member is read.
const maxPartSize = 64 << 20

// ErrPartNotFound indicates the archive has no member with the given name.
var ErrPartNotFound = errors.New("part not found")

// Open reads content as a zip archive.
func Open(content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not an Office Open XML package: %w", domain.ErrMalformedInput, err)
	}
	return zr, nil
}

// ReadPart returns the content of an archive member.
// Member names are matched case-insensitively.
func ReadPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, file := range zr.File {
		if !strings.EqualFold(file.Name, name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrMalformedInput, name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrMalformedInput, name, err)
		}
		if len(data) > maxPartSize {
			return nil, fmt.Errorf("%w: %s is too large", domain.ErrMalformedInput, name)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
}

// CoreProperties is the subset of docProps/core.xml used for PDF metadata.
type CoreProperties struct {
	Title   string `xml:"title"`
	Subject string `xml:"subject"`
	Creator string `xml:"creator"`
}

// ReadCoreProperties parses docProps/core.xml. Missing or unreadable
// properties yield an empty struct.
func ReadCoreProperties(zr *zip.Reader) CoreProperties {
	var props CoreProperties
	data, err := ReadPart(zr, "docProps/core.xml")
	if err != nil {
		return props
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return CoreProperties{}
	}
	props.Title = strings.TrimSpace(props.Title)
	props.Subject = strings.TrimSpace(props.Subject)
	props.Creator = strings.TrimSpace(props.Creator)
	return props
}

// TitleFromFilename derives a readable title from a filename.
func TitleFromFilename(name string) string {
	filename := filepath.Base(name)
	if filename == "." {
		return ""
	}
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

// Attr returns the value of the attribute with the given local name.
func Attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Layout starts a layout with metadata from core properties,
// falling back to the filename for the title.
func Layout(props CoreProperties, filename string) *domain.Layout {
	title := props.Title
	if title == "" {
		title = TitleFromFilename(filename)
	}
	return &domain.Layout{Title: title, Author: props.Creator, Subject: props.Subject}
}

var zipSignature = []byte("PK\x03\x04")

// IsPackage reports whether content starts like a zip archive.
func IsPackage(content []byte) bool {
	return bytes.HasPrefix(content, zipSignature)
}
