package analyzer

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// DefaultWindow is the span after a client's first request that is counted.
const DefaultWindow = 10 * time.Second

// IPWindow counts, per client IP, how many requests followed the client's
// first request within a fixed window.
//
// The window is anchored at the earliest request of each client and does not
// slide, so a burst later in a long session is not counted.
type IPWindow struct {
	window   time.Duration
	requests map[string][]time.Time
}

// NewIPWindow creates an IPWindow analyzer. A non-positive window falls back
// to DefaultWindow.
func NewIPWindow(window time.Duration) *IPWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	return &IPWindow{
		window:   window,
		requests: make(map[string][]time.Time),
	}
}

// Name returns the analyzer identifier.
func (a *IPWindow) Name() string {
	return NameIPWindow
}

// Observe records the client IP and timestamp of entry. Entries whose
// timestamp does not parse are dropped with an *extract.ParseError.
func (a *IPWindow) Observe(entry *model.LogEntry) error {
	ip, raw, ok := extract.ClientTimestamp(entry.Raw)
	if !ok {
		return ErrNoMatch
	}
	ts, err := extract.ParseTimestamp(raw)
	if err != nil {
		return err
	}
	a.requests[ip] = append(a.requests[ip], ts)
	return nil
}

// Merge appends the timestamps of another IPWindow.
func (a *IPWindow) Merge(other Analyzer) error {
	o, ok := other.(*IPWindow)
	if !ok {
		return mismatch(a, other)
	}
	if o.window != a.window {
		return fmt.Errorf("cannot merge windows of %v and %v", o.window, a.window)
	}
	for ip, ts := range o.requests {
		a.requests[ip] = append(a.requests[ip], ts...)
	}
	return nil
}

// Counts returns the in-window request count of every client.
func (a *IPWindow) Counts() model.CountTable {
	counts := model.NewCountTable()
	for ip, ts := range a.requests {
		// Zero counts must still produce a key.
		counts[ip] = CountInWindow(ts, a.window)
	}
	return counts
}

// CountInWindow returns how many timestamps after the earliest one fall
// within window of it, inclusive. The input is not modified.
func CountInWindow(timestamps []time.Time, window time.Duration) int {
	if len(timestamps) < 2 {
		return 0
	}

	sorted := slices.Clone(timestamps)
	slices.SortFunc(sorted, func(x, y time.Time) int {
		return x.Compare(y)
	})

	end := sorted[0].Add(window)
	n := 0
	for _, ts := range sorted[1:] {
		if ts.After(end) {
			break
		}
		n++
	}
	return n
}

// Report lists every client sorted by address.
func (a *IPWindow) Report() *report.Document {
	secs := strconv.FormatFloat(a.window.Seconds(), 'f', -1, 64)

	s := report.Section{Columns: []string{"IP", "Requests in window"}}
	for _, c := range a.Counts().SortedByKey() {
		line := fmt.Sprintf("%s: %d requests after first request in %s-second window", c.Key, c.Count, secs)
		s.AddRow(line, c.Key, strconv.Itoa(c.Count))
	}

	return &report.Document{
		Name:      NameIPWindow,
		Title:     fmt.Sprintf("IP Address Request Analysis - %s Second Window", secs),
		TitleRule: 50,
		File:      "ip_request_analysis.txt",
		Sections:  []report.Section{s},
	}
}
