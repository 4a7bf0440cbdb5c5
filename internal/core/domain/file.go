package domain

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SourceFile is the user-selected input document.
// Only metadata is held; content is read through Open when the
// conversion actually starts.
type SourceFile struct {
	// Name is the base filename including its extension.
	Name string

	// Size is the content length in bytes.
	Size int64

	// MIMEType is the declared media type, possibly empty.
	MIMEType string

	open func() (io.ReadCloser, error)
}

// NewSourceFile creates a SourceFile backed by an arbitrary opener.
func NewSourceFile(name string, size int64, mimeType string, open func() (io.ReadCloser, error)) SourceFile {
	return SourceFile{Name: name, Size: size, MIMEType: mimeType, open: open}
}

// SourceFileFromBytes creates an in-memory SourceFile.
func SourceFileFromBytes(name, mimeType string, content []byte) SourceFile {
	return SourceFile{
		Name:     name,
		Size:     int64(len(content)),
		MIMEType: mimeType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// SourceFileFromPath stats a file on disk and returns a SourceFile for it.
// The file is not opened until Open is called.
func SourceFileFromPath(path, mimeType string) (SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if info.IsDir() {
		return SourceFile{}, fmt.Errorf("%w: %s is a directory", ErrReadFailed, path)
	}
	return SourceFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mimeType,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Open returns a reader over the file content.
func (f SourceFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%w: no content for %s", ErrReadFailed, f.Name)
	}
	return f.open()
}

// Extension returns the last dot-segment of the filename without the dot,
// or an empty string if the name has none.
func (f SourceFile) Extension() string {
	ext := filepath.Ext(f.Name)
	if len(ext) <= 1 {
		return ""
	}
	return ext[1:]
}
