package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownRenderer lays documents out as GitHub-flavored Markdown, one table
// per section.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Extension returns ".md".
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Render writes doc as Markdown.
func (r *MarkdownRenderer) Render(w io.Writer, doc *Document) error {
	md := markdown.NewMarkdown(w)

	title := doc.Title
	if title == "" {
		title = doc.Name
	}
	md.H1(title)
	md.PlainText("")

	if doc.Source != "" || !doc.GeneratedAt.IsZero() {
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Source", "`" + doc.Source + "`"},
				{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			},
		})
		md.PlainText("")
	}

	for _, s := range doc.Sections {
		if s.Heading != "" {
			md.H2(strings.TrimSuffix(s.Heading, ":"))
			md.PlainText("")
		}

		if len(s.Rows) == 0 {
			md.PlainText("No entries.")
			md.PlainText("")
			continue
		}

		md.Table(markdown.TableSet{
			Header: s.Columns,
			Rows:   escapeRows(s.Rows),
		})
		md.PlainText("")
	}

	return md.Build()
}

// escapeRows protects pipe characters, which would otherwise split cells.
func escapeRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.ReplaceAll(cell, "|", `\|`)
		}
		out[i] = cells
	}
	return out
}
