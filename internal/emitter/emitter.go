// Package emitter defines the interface and implementations for report destinations.
package emitter

import (
	"context"
	"strings"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// Emitter defines the contract for report destinations.
// Each emitter receives finished report documents and writes them to a destination.
type Emitter interface {
	// Start initializes the emitter (directories, connections, etc.).
	// Called once before Emit is called.
	Start(ctx context.Context) error

	// Emit writes one report document to the destination.
	Emit(ctx context.Context, doc *report.Document) error

	// Stop flushes any buffered data and releases resources.
	Stop(ctx context.Context) error

	// Name returns a unique identifier for this emitter.
	Name() string
}

// fieldName turns a column label into a lower snake-case field name.
func fieldName(column string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(column)), " ", "_")
}

// sectionName returns the heading of a section without its trailing colon.
func sectionName(s report.Section) string {
	return strings.TrimSuffix(s.Heading, ":")
}

// rowFields maps the columns of s to the values of row. Missing values are
// left out.
func rowFields(s report.Section, row []string) map[string]string {
	fields := make(map[string]string, len(row))
	for i, col := range s.Columns {
		if i < len(row) {
			fields[fieldName(col)] = row[i]
		}
	}
	return fields
}
