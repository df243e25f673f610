// Package model defines the core data structures used throughout the analyzer.
package model

// LogEntry represents a single input line flowing through the pipeline.
// No structure is assumed beyond the raw text; analyzers locate the
// fields they need by pattern search.
type LogEntry struct {
	// LineNo is the 1-based position of the line in its source.
	LineNo int

	// Source identifies which ingestor produced this entry.
	Source string

	// Raw contains the original log line without its trailing newline.
	Raw string
}

// NewLogEntry creates a new LogEntry.
func NewLogEntry(source string, lineNo int, raw string) *LogEntry {
	return &LogEntry{
		LineNo: lineNo,
		Source: source,
		Raw:    raw,
	}
}
