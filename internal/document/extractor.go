package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned when no extractor understands the
// file's format.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor converts an uploaded file into plain text. PDF/DOCX/OCR
// handling lives behind this interface; the chat pipeline only consumes
// the result.
type Extractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// TextExtractor handles plain-text formats. Anything it cannot decode
// as UTF-8 text is rejected with ErrUnsupportedFormat.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".html": true,
	".htm":  true,
}

func (e *TextExtractor) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !textExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedFormat, filename)
	}
	return string(data), nil
}
