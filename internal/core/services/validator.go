package services

import (
	"fmt"
	"mime"
	"strings"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

// Validator decides whether a file is an accepted office document.
// It has no side effects and is safe for concurrent use.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns true if the file is accepted.
func (v *Validator) Validate(file domain.SourceFile) bool {
	_, err := v.Classify(file)
	return err == nil
}

// Classify derives the format of an accepted file.
// A recognised extension wins over the declared MIME type, since browsers
// and file pickers often report a generic type. Rejections wrap
// domain.ErrValidation.
func (v *Validator) Classify(file domain.SourceFile) (domain.Format, error) {
	if f, ok := domain.FormatFromExtension(file.Extension()); ok {
		return f, nil
	}
	if mt := mediaType(file.MIMEType); mt != "" {
		if f, ok := domain.FormatFromMIME(mt); ok {
			return f, nil
		}
	}

	name := file.Name
	if name == "" {
		name = "file"
	}
	return "", fmt.Errorf("%w: %s is not a Word, Excel or PowerPoint document", domain.ErrValidation, name)
}

// mediaType strips parameters from a Content-Type style value.
func mediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}
