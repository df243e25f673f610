package report

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes documents as indented JSON objects.
type JSONRenderer struct {
	indent string
}

// NewJSONRenderer creates a JSONRenderer with two-space indentation.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{indent: "  "}
}

// Extension returns ".json".
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Render writes doc as JSON.
func (r *JSONRenderer) Render(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", r.indent)
	return enc.Encode(doc)
}
