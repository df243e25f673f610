package analyzer

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
)

// Analyzer identifiers, also used as report names.
const (
	NameIPCounts   = "ip-counts"
	NameUniqueIPs  = "unique-ips"
	NameIPWindow   = "ip-window"
	NameUserAgents = "user-agents"
	NameEndpoints  = "endpoints"
)

// Names lists every analyzer identifier in report order.
var Names = []string{NameIPCounts, NameUniqueIPs, NameIPWindow, NameUserAgents, NameEndpoints}

// SetFactory builds a fresh, empty analyzer set. Every call returns
// analyzers of the same kinds in the same order, so results can be merged.
type SetFactory func() *Set

// NewSetFactory validates cfg and returns a factory for the enabled analyses.
func NewSetFactory(cfg config.AnalysesConfig) (SetFactory, error) {
	if cfg.EnabledCount() == 0 {
		return nil, fmt.Errorf("no analysis enabled")
	}

	// Compiled once and shared by every set; a bad pattern fails before any
	// input is read.
	var exclude []glob.Glob
	if cfg.Endpoints.Enabled {
		var err error
		if exclude, err = CompileExcludes(cfg.Endpoints.Exclude); err != nil {
			return nil, err
		}
	}

	classifier := extract.NewClassifier()

	return func() *Set {
		s := NewSet()
		if cfg.IPCounts.Enabled {
			s.Add(NewIPCounts())
		}
		if cfg.UniqueIPs.Enabled {
			s.Add(NewUniqueIPs())
		}
		if cfg.IPWindow.Enabled {
			s.Add(NewIPWindow(cfg.IPWindow.Window))
		}
		if cfg.UserAgents.Enabled {
			s.Add(NewUserAgents(classifier, cfg.UserAgents.Truncate))
		}
		if cfg.Endpoints.Enabled {
			s.Add(NewEndpointsWithExcludes(exclude))
		}
		return s
	}, nil
}
