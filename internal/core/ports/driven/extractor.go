package driven

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// TextExtractor turns an uploaded file into plain text.
// Each extractor handles specific formats (e.g., PDF, Markdown).
type TextExtractor interface {
	// SupportedFormats returns the formats this extractor handles.
	SupportedFormats() []domain.Format

	// Extract returns the text content of the upload.
	// Failures are reported wrapping domain.ErrExtractionFailed.
	Extract(ctx context.Context, upload domain.Upload) (string, error)
}
