// Package pdf fetches PDF documents and extracts their plain text.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pageza/recipepdf/internal/types"
)

// TextExtractor extracts plain text from PDF bytes
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractText returns the trimmed plain text of the PDF in data
func (e *TextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", types.ErrTextExtraction)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// the reader panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", types.ErrTextExtraction, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %w", types.ErrTextExtraction, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read PDF text: %w", types.ErrTextExtraction, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read PDF text: %w", types.ErrTextExtraction, err)
	}

	text = strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: %w", types.ErrTextExtraction, ErrNoText)
	}
	return text, nil
}

// ErrNoText is returned for PDFs without an extractable text layer
var ErrNoText = errors.New("document has no text layer")
