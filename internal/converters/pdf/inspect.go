package pdf

import (
	"bytes"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/officepdf/internal/logger"
)

// Info summarises a PDF document.
type Info struct {
	Pages int
	Text  string
}

// Inspect opens PDF bytes and extracts the page count and plain text.
// Password is tried once for encrypted documents.
func Inspect(data []byte, password string) (*Info, error) {
	rd := bytes.NewReader(data)
	size := int64(len(data))

	var (
		r   *lpdf.Reader
		err error
	)
	if password == "" {
		r, err = lpdf.NewReader(rd, size)
	} else {
		tried := false
		r, err = lpdf.NewReaderEncrypted(rd, size, func() string {
			if tried {
				return ""
			}
			tried = true
			return password
		})
	}
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	// Text is best effort. Some streams (such as encrypted ones) cannot be
	// decoded by the reader, which must not hide an otherwise valid document.
	info := &Info{Pages: r.NumPage()}
	fonts := make(map[string]*lpdf.Font)
	var sb strings.Builder
	for i := 1; i <= info.Pages; i++ {
		text, err := pageText(r.Page(i), fonts)
		if err != nil {
			logger.Debug("Skipping text of pdf page %d: %v", i, err)
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	info.Text = sb.String()
	return info, nil
}

func pageText(p lpdf.Page, fonts map[string]*lpdf.Font) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page: %v", r)
		}
	}()
	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := p.Font(name)
			fonts[name] = &f
		}
	}
	return p.GetPlainText(fonts)
}
