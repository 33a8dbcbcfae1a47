package converter

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"achievements/internal/content/sanitizer"
)

// MarkdownExporter converts editor markup to markdown in two stages:
// sanitize, then convert.
type MarkdownExporter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewMarkdownExporter creates an exporter with the editor sanitizer policy.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

// Convert returns the markdown rendering of markup.
func (e *MarkdownExporter) Convert(markup string) (string, error) {
	sanitized, err := e.sanitizer.Sanitize(markup)
	if err != nil {
		return "", fmt.Errorf("failed to sanitize HTML: %w", err)
	}

	markdown, err := e.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}
