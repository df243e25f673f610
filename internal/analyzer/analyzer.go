// Package analyzer defines the interface and implementations of the access-log analyses.
//
// Every analyzer is an explicit local state object: it observes entries,
// can be merged with another partial of the same kind, and turns its state
// into a report at the end of a run. None of them touch the file system.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// Reasons an entry does not contribute to an analysis.
var (
	// ErrNoMatch means the entry does not contain the field the analysis needs.
	ErrNoMatch = errors.New("line does not match")

	// ErrRejected means the field was found but is not a valid value.
	ErrRejected = errors.New("field rejected")

	// ErrExcluded means the value matched a configured exclusion.
	ErrExcluded = errors.New("value excluded")
)

// Analyzer defines the contract for a single analysis.
type Analyzer interface {
	// Observe inspects one entry. A non-nil error means the entry did not
	// contribute to the analysis; it never aborts the run.
	Observe(entry *model.LogEntry) error

	// Merge folds a partial result of the same analysis into this one.
	Merge(other Analyzer) error

	// Report renders the current state.
	Report() *report.Document

	// Name returns a unique identifier for this analysis.
	Name() string
}

// SkipFunc receives every entry an analyzer did not count, with the reason.
type SkipFunc func(analyzer string, entry *model.LogEntry, reason error)

// Stats counts how many entries each analyzer matched or skipped.
type Stats struct {
	Name    string
	Matched int
	Skipped int
}

// Set runs several analyzers over the same entries.
type Set struct {
	analyzers []Analyzer
	stats     []Stats
	entries   int
}

// NewSet creates a new analyzer set.
func NewSet(analyzers ...Analyzer) *Set {
	s := &Set{}
	for _, a := range analyzers {
		s.Add(a)
	}
	return s
}

// Add appends an analyzer to the set.
func (s *Set) Add(a Analyzer) {
	s.analyzers = append(s.analyzers, a)
	s.stats = append(s.stats, Stats{Name: a.Name()})
}

// Observe passes the entry to every analyzer. Only context cancellation is
// returned as an error; skipped entries are reported through onSkip.
func (s *Set) Observe(ctx context.Context, entry *model.LogEntry, onSkip SkipFunc) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.entries++
	for i, a := range s.analyzers {
		if err := a.Observe(entry); err != nil {
			s.stats[i].Skipped++
			if onSkip != nil {
				onSkip(a.Name(), entry, err)
			}
			continue
		}
		s.stats[i].Matched++
	}
	return nil
}

// Merge folds other into s. Both sets must hold the same analyses in the
// same order.
func (s *Set) Merge(other *Set) error {
	if len(s.analyzers) != len(other.analyzers) {
		return fmt.Errorf("merging sets of different size: %d and %d", len(s.analyzers), len(other.analyzers))
	}
	for i, a := range s.analyzers {
		if err := a.Merge(other.analyzers[i]); err != nil {
			return fmt.Errorf("merging %s: %w", a.Name(), err)
		}
		s.stats[i].Matched += other.stats[i].Matched
		s.stats[i].Skipped += other.stats[i].Skipped
	}
	s.entries += other.entries
	return nil
}

// Reports returns the report of every analyzer, in set order.
func (s *Set) Reports() []*report.Document {
	docs := make([]*report.Document, 0, len(s.analyzers))
	for _, a := range s.analyzers {
		docs = append(docs, a.Report())
	}
	return docs
}

// Stats returns per-analyzer match counts.
func (s *Set) Stats() []Stats {
	out := make([]Stats, len(s.stats))
	copy(out, s.stats)
	return out
}

// Entries returns the number of entries observed.
func (s *Set) Entries() int {
	return s.entries
}

// Analyzers returns the analyzers of the set.
func (s *Set) Analyzers() []Analyzer {
	return s.analyzers
}

// Len returns the number of analyzers in the set.
func (s *Set) Len() int {
	return len(s.analyzers)
}

// mismatch builds the error returned when merging different analyses.
func mismatch(want Analyzer, got Analyzer) error {
	return fmt.Errorf("cannot merge %s into %s", got.Name(), want.Name())
}
