package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	doc := &Document{
		Name:        "endpoints",
		Title:       "Endpoint Access Analysis",
		TitleRule:   30,
		File:        "endpoint_access_analysis.txt",
		Source:      "access.log",
		GeneratedAt: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	}

	first := Section{Heading: "By Method:", Rule: 10, Columns: []string{"Endpoint", "Requests"}}
	first.AddRow("1 - GET /a", "GET /a", "1")
	second := Section{Heading: "Summary:", Rule: 8, Columns: []string{"Statistic", "Value"}}
	second.AddRow("Total: 1", "Total", "1")

	doc.Sections = []Section{first, second}
	return doc
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"", "", false},
		{"text", "", false},
		{"TEXT", "", false},
		{"markdown", ".md", false},
		{"md", ".md", false},
		{"json", ".json", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := NewRenderer(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, r.Extension())
		})
	}
}

func TestTextRenderer_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer().Render(&buf, sampleDocument()))

	want := "Endpoint Access Analysis\n" +
		strings.Repeat("=", 30) + "\n\n" +
		"By Method:\n" +
		strings.Repeat("-", 10) + "\n" +
		"1 - GET /a\n" +
		"\n\n" +
		"Summary:\n" +
		strings.Repeat("-", 8) + "\n" +
		"Total: 1\n"

	assert.Equal(t, want, buf.String())
}

func TestTextRenderer_NoTitleNoHeading(t *testing.T) {
	s := Section{}
	s.AddRow("10.0.0.1 2", "10.0.0.1", "2")
	s.AddRow("10.0.0.2 1", "10.0.0.2", "1")

	var buf bytes.Buffer
	err := NewTextRenderer().Render(&buf, &Document{Name: "ip-counts", Sections: []Section{s}})
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1 2\n10.0.0.2 1\n", buf.String())
}

func TestMarkdownRenderer(t *testing.T) {
	doc := sampleDocument()
	doc.Sections[0].AddRow("1 - GET /a|b", "GET /a|b", "1")
	doc.Sections = append(doc.Sections, Section{Heading: "Empty:", Columns: []string{"Key"}})

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownRenderer().Render(&buf, doc))

	out := buf.String()
	assert.Contains(t, out, "# Endpoint Access Analysis")
	assert.Contains(t, out, "## By Method")
	assert.NotContains(t, out, "## By Method:")
	assert.Contains(t, out, "| Endpoint | Requests |")
	assert.Contains(t, out, "| GET /a | 1 |")
	assert.Contains(t, out, `GET /a\|b`)
	assert.Contains(t, out, "No entries.")
	assert.Contains(t, out, "`access.log`")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, sampleDocument()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "endpoints", decoded["name"])
	assert.Equal(t, "access.log", decoded["source"])

	sections, ok := decoded["sections"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 2)

	first := sections[0].(map[string]any)
	assert.Equal(t, "By Method:", first["heading"])
	assert.NotContains(t, first, "Lines")
	assert.Equal(t, []any{[]any{"GET /a", "1"}}, first["rows"])
}

func TestFileName(t *testing.T) {
	doc := &Document{Name: "endpoints", File: "endpoint_access_analysis.txt"}

	assert.Equal(t, "endpoint_access_analysis.txt", FileName(doc, ""))
	assert.Equal(t, "endpoint_access_analysis.md", FileName(doc, ".md"))
	assert.Equal(t, "endpoint_access_analysis.json", FileName(doc, ".json"))
	assert.Equal(t, "misc.txt", FileName(&Document{Name: "misc"}, ""))
}
