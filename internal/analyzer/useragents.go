package analyzer

import (
	"fmt"
	"strconv"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// DefaultTruncate is the longest exact agent string printed in reports.
const DefaultTruncate = 100

// UserAgents classifies the trailing quoted field of each line and counts
// both the categories and the exact strings.
type UserAgents struct {
	classifier *extract.Classifier
	truncate   int
	categories model.CountTable
	exact      model.CountTable
}

// NewUserAgents creates a UserAgents analyzer. A nil classifier uses the
// default rules; a non-positive truncate falls back to DefaultTruncate.
func NewUserAgents(classifier *extract.Classifier, truncate int) *UserAgents {
	if classifier == nil {
		classifier = extract.NewClassifier()
	}
	if truncate <= 0 {
		truncate = DefaultTruncate
	}
	return &UserAgents{
		classifier: classifier,
		truncate:   truncate,
		categories: model.NewCountTable(),
		exact:      model.NewCountTable(),
	}
}

// Name returns the analyzer identifier.
func (a *UserAgents) Name() string {
	return NameUserAgents
}

// Observe classifies the user agent of entry.
func (a *UserAgents) Observe(entry *model.LogEntry) error {
	ua, ok := extract.UserAgent(entry.Raw)
	if !ok {
		return ErrNoMatch
	}
	if !extract.AcceptUserAgent(ua) {
		return fmt.Errorf("%w: user agent %q", ErrRejected, ua)
	}
	a.categories.Inc(a.classifier.Classify(ua))
	a.exact.Inc(ua)
	return nil
}

// Merge adds the counts of another UserAgents.
func (a *UserAgents) Merge(other Analyzer) error {
	o, ok := other.(*UserAgents)
	if !ok {
		return mismatch(a, other)
	}
	a.categories.Merge(o.categories)
	a.exact.Merge(o.exact)
	return nil
}

// Categories returns the per-category counts.
func (a *UserAgents) Categories() model.CountTable {
	return a.categories
}

// Exact returns the per-string counts.
func (a *UserAgents) Exact() model.CountTable {
	return a.exact
}

// Report lists the categories and the exact strings, most frequent first.
func (a *UserAgents) Report() *report.Document {
	summary := report.Section{
		Heading: "Summary by User Agent Type:",
		Rule:    30,
		Columns: []string{"Type", "Requests"},
	}
	for _, c := range a.categories.SortedByCount() {
		summary.AddRow(fmt.Sprintf("%s: %d requests", c.Key, c.Count), c.Key, strconv.Itoa(c.Count))
	}

	detail := report.Section{
		Heading: "Detailed Breakdown (Exact User Agent Strings):",
		Rule:    50,
		Columns: []string{"User Agent", "Requests"},
	}
	for _, c := range a.exact.SortedByCount() {
		agent := truncate(c.Key, a.truncate)
		detail.AddRow(fmt.Sprintf("%d requests: %s", c.Count, agent), agent, strconv.Itoa(c.Count))
	}

	return &report.Document{
		Name:      NameUserAgents,
		Title:     "User Agent Analysis",
		TitleRule: 30,
		File:      "user_agent_analysis.txt",
		Sections:  []report.Section{summary, detail},
	}
}

// truncate shortens s to max runes followed by "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
