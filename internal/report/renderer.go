package report

import (
	"fmt"
	"io"
	"strings"
)

// Supported report formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Renderer writes a Document to an output stream.
type Renderer interface {
	// Render writes doc to w.
	Render(w io.Writer, doc *Document) error

	// Extension returns the file extension for this format, or "" to keep
	// the document's own file name.
	Extension() string
}

// NewRenderer returns the Renderer for format.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextRenderer(), nil
	case FormatMarkdown, "md":
		return NewMarkdownRenderer(), nil
	case FormatJSON:
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// TextRenderer lays documents out as human-readable text with "=" and "-"
// rules under headings.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Extension keeps the document's own file name.
func (r *TextRenderer) Extension() string {
	return ""
}

// Render writes doc as plain text.
func (r *TextRenderer) Render(w io.Writer, doc *Document) error {
	var b strings.Builder

	if doc.Title != "" {
		b.WriteString(doc.Title + "\n")
		b.WriteString(strings.Repeat("=", doc.TitleRule) + "\n\n")
	}

	for i, s := range doc.Sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if s.Heading != "" {
			b.WriteString(s.Heading + "\n")
			b.WriteString(strings.Repeat("-", s.Rule) + "\n")
		}
		for _, line := range s.Lines {
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
