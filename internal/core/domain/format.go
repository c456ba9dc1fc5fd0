package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the encoding of an uploaded file.
type Format string

// Supported upload formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// FormatFromFilename maps a file extension to its Format.
// Extensions are matched case-insensitively.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		if ext == "" {
			ext = name
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// MIMEType returns the media type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatText:
		return "text/plain"
	case FormatMarkdown:
		return "text/markdown"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
