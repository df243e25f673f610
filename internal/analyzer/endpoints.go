package analyzer

import (
	"fmt"
	"strconv"

	"github.com/gobwas/glob"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// Endpoints counts HTTP requests per "METHOD path" and per path, with the
// query string stripped.
type Endpoints struct {
	exclude   []glob.Glob
	byRequest model.CountTable
	byPath    model.CountTable
}

// NewEndpoints creates an Endpoints analyzer. Paths matching any of the
// exclude globs are not counted; '/' separates glob segments.
func NewEndpoints(exclude ...string) (*Endpoints, error) {
	globs, err := CompileExcludes(exclude)
	if err != nil {
		return nil, err
	}
	return NewEndpointsWithExcludes(globs), nil
}

// NewEndpointsWithExcludes creates an Endpoints analyzer from already
// compiled exclusions. The slice is shared, not copied.
func NewEndpointsWithExcludes(exclude []glob.Glob) *Endpoints {
	return &Endpoints{
		exclude:   exclude,
		byRequest: model.NewCountTable(),
		byPath:    model.NewCountTable(),
	}
}

// CompileExcludes compiles endpoint exclusion globs.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Name returns the analyzer identifier.
func (a *Endpoints) Name() string {
	return NameEndpoints
}

// Observe counts the request of entry.
func (a *Endpoints) Observe(entry *model.LogEntry) error {
	method, path, ok := extract.Request(entry.Raw)
	if !ok {
		return ErrNoMatch
	}

	clean := extract.NormalizePath(path)
	for _, g := range a.exclude {
		if g.Match(clean) {
			return fmt.Errorf("%w: path %q", ErrExcluded, clean)
		}
	}

	a.byRequest.Inc(extract.EndpointKey(method, clean))
	a.byPath.Inc(clean)
	return nil
}

// Merge adds the counts of another Endpoints.
func (a *Endpoints) Merge(other Analyzer) error {
	o, ok := other.(*Endpoints)
	if !ok {
		return mismatch(a, other)
	}
	a.byRequest.Merge(o.byRequest)
	a.byPath.Merge(o.byPath)
	return nil
}

// ByRequest returns the per "METHOD path" counts.
func (a *Endpoints) ByRequest() model.CountTable {
	return a.byRequest
}

// ByPath returns the per-path counts.
func (a *Endpoints) ByPath() model.CountTable {
	return a.byPath
}

// Total returns the number of counted requests.
func (a *Endpoints) Total() int {
	return a.byRequest.Total()
}

// Report lists both tables with their share of the total, plus summary
// statistics.
func (a *Endpoints) Report() *report.Document {
	total := a.Total()

	byRequest := report.Section{
		Heading: "Access Count by Method and Endpoint:",
		Rule:    40,
		Columns: []string{"Endpoint", "Requests", "Percentage"},
	}
	addCounts(&byRequest, a.byRequest, total)

	byPath := report.Section{
		Heading: "Access Count by Endpoint Only (ignoring HTTP method):",
		Rule:    50,
		Columns: []string{"Endpoint", "Requests", "Percentage"},
	}
	addCounts(&byPath, a.byPath, total)

	stats := report.Section{
		Heading: "Summary Statistics:",
		Rule:    20,
		Columns: []string{"Statistic", "Value"},
	}
	stats.AddRow(fmt.Sprintf("Total requests analyzed: %d", total), "Total requests analyzed", strconv.Itoa(total))
	stats.AddRow(fmt.Sprintf("Unique endpoints (with method): %d", len(a.byRequest)), "Unique endpoints (with method)", strconv.Itoa(len(a.byRequest)))
	stats.AddRow(fmt.Sprintf("Unique endpoints (path only): %d", len(a.byPath)), "Unique endpoints (path only)", strconv.Itoa(len(a.byPath)))

	return &report.Document{
		Name:      NameEndpoints,
		Title:     "Endpoint Access Analysis",
		TitleRule: 30,
		File:      "endpoint_access_analysis.txt",
		Sections:  []report.Section{byRequest, byPath, stats},
	}
}

func addCounts(s *report.Section, counts model.CountTable, total int) {
	for _, c := range counts.SortedByCount() {
		pct := extract.Percentage(c.Count, total)
		s.AddRow(
			fmt.Sprintf("%6d requests (%5.1f%%) - %s", c.Count, pct, c.Key),
			c.Key, strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", pct),
		)
	}
}
