// Package report turns analysis results into rendered reports.
//
// Analyzers describe their output as a format-neutral Document; a Renderer
// lays it out as plain text, Markdown or JSON.
package report

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is the complete output of one analysis.
type Document struct {
	// Name is the analysis identifier, e.g. "endpoints".
	Name string `json:"name"`

	// Title is printed above the sections. An empty title prints nothing.
	Title string `json:"title,omitempty"`

	// TitleRule is the width of the "=" rule under the title.
	TitleRule int `json:"-"`

	// File is the default file name for the text rendering.
	File string `json:"-"`

	// Source is the input the analysis ran over.
	Source string `json:"source,omitempty"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	Sections []Section `json:"sections"`
}

// Section is a titled block of rows.
type Section struct {
	// Heading is printed above the rows, followed by a "-" rule of width Rule.
	Heading string `json:"heading,omitempty"`
	Rule    int    `json:"-"`

	// Columns and Rows hold the structured data of the section.
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	// Lines is the plain-text rendering of Rows.
	Lines []string `json:"-"`
}

// AddRow appends a structured row and its text line.
func (s *Section) AddRow(line string, values ...string) {
	s.Rows = append(s.Rows, values)
	s.Lines = append(s.Lines, line)
}

// FileName returns the file name of doc with the extension of the given
// format. An empty ext keeps the default file name.
func FileName(doc *Document, ext string) string {
	name := doc.File
	if name == "" {
		name = doc.Name + ".txt"
	}
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
