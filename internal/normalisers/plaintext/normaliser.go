// Package plaintext extracts text from plain text and Markdown uploads.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// utf8BOM is stripped from the start of uploads.
const utf8BOM = "\xef\xbb\xbf"

// Normaliser handles UTF-8 text documents. Markdown is indexed verbatim.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFormats returns the formats this normaliser handles.
func (n *Normaliser) SupportedFormats() []domain.Format {
	return []domain.Format{domain.FormatText, domain.FormatMarkdown}
}

// Extract decodes the upload as UTF-8.
func (n *Normaliser) Extract(_ context.Context, upload domain.Upload) (string, error) {
	if !utf8.Valid(upload.Data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtractionFailed, upload.Filename)
	}

	content := string(upload.Data)
	if len(content) >= len(utf8BOM) && content[:len(utf8BOM)] == utf8BOM {
		content = content[len(utf8BOM):]
	}
	return content, nil
}
