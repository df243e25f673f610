package analyzer

import (
	"slices"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// UniqueIPs collects the set of IPv4 literals seen in the input.
type UniqueIPs struct {
	seen map[string]struct{}
}

// NewUniqueIPs creates an empty UniqueIPs analyzer.
func NewUniqueIPs() *UniqueIPs {
	return &UniqueIPs{seen: make(map[string]struct{})}
}

// Name returns the analyzer identifier.
func (a *UniqueIPs) Name() string {
	return NameUniqueIPs
}

// Observe records the addresses of entry.
func (a *UniqueIPs) Observe(entry *model.LogEntry) error {
	ips := extract.IPv4s(entry.Raw)
	if len(ips) == 0 {
		return ErrNoMatch
	}
	for _, ip := range ips {
		a.seen[ip] = struct{}{}
	}
	return nil
}

// Merge unions the addresses of another UniqueIPs.
func (a *UniqueIPs) Merge(other Analyzer) error {
	o, ok := other.(*UniqueIPs)
	if !ok {
		return mismatch(a, other)
	}
	for ip := range o.seen {
		a.seen[ip] = struct{}{}
	}
	return nil
}

// IPs returns the addresses in sorted order.
func (a *UniqueIPs) IPs() []string {
	out := make([]string, 0, len(a.seen))
	for ip := range a.seen {
		out = append(out, ip)
	}
	slices.Sort(out)
	return out
}

// Report lists one address per line.
func (a *UniqueIPs) Report() *report.Document {
	s := report.Section{Columns: []string{"IP"}}
	for _, ip := range a.IPs() {
		s.AddRow(ip, ip)
	}

	return &report.Document{
		Name:     NameUniqueIPs,
		File:     "unique_ips.log",
		Sections: []report.Section{s},
	}
}
