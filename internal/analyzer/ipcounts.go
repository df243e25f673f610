package analyzer

import (
	"fmt"
	"strconv"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// IPCounts counts every IPv4 literal found anywhere in a line. A line that
// mentions two addresses contributes to both.
type IPCounts struct {
	counts model.CountTable
}

// NewIPCounts creates an empty IPCounts analyzer.
func NewIPCounts() *IPCounts {
	return &IPCounts{counts: model.NewCountTable()}
}

// Name returns the analyzer identifier.
func (a *IPCounts) Name() string {
	return NameIPCounts
}

// Observe counts the addresses of entry.
func (a *IPCounts) Observe(entry *model.LogEntry) error {
	ips := extract.IPv4s(entry.Raw)
	if len(ips) == 0 {
		return ErrNoMatch
	}
	for _, ip := range ips {
		a.counts.Inc(ip)
	}
	return nil
}

// Merge adds the counts of another IPCounts.
func (a *IPCounts) Merge(other Analyzer) error {
	o, ok := other.(*IPCounts)
	if !ok {
		return mismatch(a, other)
	}
	a.counts.Merge(o.counts)
	return nil
}

// Counts returns the per-address counts.
func (a *IPCounts) Counts() model.CountTable {
	return a.counts
}

// Report lists "<ip> <count>" sorted by address.
func (a *IPCounts) Report() *report.Document {
	s := report.Section{Columns: []string{"IP", "Count"}}
	for _, c := range a.counts.SortedByKey() {
		s.AddRow(fmt.Sprintf("%s %d", c.Key, c.Count), c.Key, strconv.Itoa(c.Count))
	}

	return &report.Document{
		Name:     NameIPCounts,
		File:     "ip_counts.log",
		Sections: []report.Section{s},
	}
}
