package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/extract"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
)

const (
	chromeLine = `192.168.1.1 - - [10/Oct/2023:13:55:36 +0000] "GET /api/users?id=1 HTTP/1.1" 200 1234 "-" "Mozilla/5.0 Chrome/91.0"`
	curlLine   = `10.0.0.1 - - [03/Jun/2025:10:09:02 +0000] "POST /login HTTP/1.1" 302 0 "-" "curl/7.64.1"`
)

func entries(lines ...string) []*model.LogEntry {
	out := make([]*model.LogEntry, 0, len(lines))
	for i, l := range lines {
		out = append(out, model.NewLogEntry("test", i+1, l))
	}
	return out
}

func observeAll(t *testing.T, a Analyzer, lines ...string) {
	t.Helper()
	for _, e := range entries(lines...) {
		_ = a.Observe(e)
	}
}

// windowLine builds a request line for ip at base plus offset.
func windowLine(ip string, base time.Time, offset time.Duration) string {
	ts := base.Add(offset).Format("02/Jan/2006:15:04:05 -0700")
	return fmt.Sprintf(`%s - - [%s] "GET / HTTP/1.1" 200 1 "-" "curl/8.0"`, ip, ts)
}

func TestIPCounts(t *testing.T) {
	a := NewIPCounts()
	observeAll(t, a,
		chromeLine,
		chromeLine,
		`10.0.0.1 forwarded for 192.168.1.1`,
	)

	err := a.Observe(model.NewLogEntry("test", 4, "no addresses here"))
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Equal(t, 3, a.Counts()["192.168.1.1"])
	assert.Equal(t, 1, a.Counts()["10.0.0.1"])

	doc := a.Report()
	assert.Equal(t, "ip_counts.log", doc.File)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, []string{"10.0.0.1 1", "192.168.1.1 3"}, doc.Sections[0].Lines)
	assert.Empty(t, doc.Title)
}

func TestUniqueIPs(t *testing.T) {
	a := NewUniqueIPs()
	observeAll(t, a, chromeLine, curlLine, chromeLine, "garbage")

	assert.Equal(t, []string{"10.0.0.1", "192.168.1.1"}, a.IPs())

	doc := a.Report()
	assert.Equal(t, "unique_ips.log", doc.File)
	assert.Equal(t, []string{"10.0.0.1", "192.168.1.1"}, doc.Sections[0].Lines)
}

func TestCountInWindow(t *testing.T) {
	base := time.Date(2023, 10, 10, 13, 55, 0, 0, time.UTC)
	at := func(secs ...int) []time.Time {
		out := make([]time.Time, 0, len(secs))
		for _, s := range secs {
			out = append(out, base.Add(time.Duration(s)*time.Second))
		}
		return out
	}

	tests := []struct {
		name string
		ts   []time.Time
		want int
	}{
		{name: "empty", ts: nil, want: 0},
		{name: "single request", ts: at(0), want: 0},
		{name: "anchored at first", ts: at(0, 3, 9, 15), want: 2},
		{name: "boundary inclusive", ts: at(0, 10), want: 1},
		{name: "unsorted input", ts: at(15, 9, 0, 3), want: 2},
		{name: "late burst not counted", ts: at(0, 60, 61, 62, 63), want: 0},
		{name: "duplicates", ts: at(0, 0, 0), want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountInWindow(tt.ts, 10*time.Second))
		})
	}
}

func TestCountInWindow_DoesNotModifyInput(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base.Add(5 * time.Second), base}
	CountInWindow(ts, time.Second)
	assert.True(t, ts[0].After(ts[1]))
}

func TestIPWindow(t *testing.T) {
	base := time.Date(2023, 10, 10, 13, 55, 36, 0, time.UTC)
	a := NewIPWindow(0)

	observeAll(t, a,
		windowLine("10.0.0.1", base, 0),
		windowLine("10.0.0.1", base, 3*time.Second),
		windowLine("10.0.0.1", base, 9*time.Second),
		windowLine("10.0.0.1", base, 15*time.Second),
		windowLine("10.0.0.2", base, 0),
	)

	counts := a.Counts()
	assert.Equal(t, 2, counts["10.0.0.1"])
	v, ok := counts["10.0.0.2"]
	assert.True(t, ok, "single-request client must be listed")
	assert.Equal(t, 0, v)

	doc := a.Report()
	assert.Equal(t, "IP Address Request Analysis - 10 Second Window", doc.Title)
	assert.Equal(t, 50, doc.TitleRule)
	assert.Equal(t, []string{
		"10.0.0.1: 2 requests after first request in 10-second window",
		"10.0.0.2: 0 requests after first request in 10-second window",
	}, doc.Sections[0].Lines)
}

func TestIPWindow_Malformed(t *testing.T) {
	a := NewIPWindow(10 * time.Second)

	err := a.Observe(model.NewLogEntry("test", 1, `10.0.0.1 - - [not a time] "GET / HTTP/1.1"`))
	var perr *extract.ParseError
	assert.True(t, errors.As(err, &perr))

	err = a.Observe(model.NewLogEntry("test", 2, `no ip [10/Oct/2023:13:55:36 +0000]`))
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Empty(t, a.Counts())
}

func TestIPWindow_MergeDifferentWindow(t *testing.T) {
	a := NewIPWindow(10 * time.Second)
	assert.Error(t, a.Merge(NewIPWindow(30*time.Second)))
	assert.Error(t, a.Merge(NewIPCounts()))
}

func TestUserAgents(t *testing.T) {
	long := strings.Repeat("x", 120)
	a := NewUserAgents(nil, 0)
	observeAll(t, a,
		chromeLine,
		chromeLine,
		curlLine,
		`1.1.1.1 - - [10/Oct/2023:13:55:36 +0000] "GET / HTTP/1.1" 200 1 "-" "`+long+`"`,
	)

	err := a.Observe(model.NewLogEntry("test", 5, `1.1.1.1 "GET / HTTP/1.1" "GET /other HTTP/1.1"`))
	assert.ErrorIs(t, err, ErrRejected)

	err = a.Observe(model.NewLogEntry("test", 6, `1.1.1.1 "only one quoted field"`))
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Equal(t, 2, a.Categories()[extract.CategoryChrome])
	assert.Equal(t, 1, a.Categories()[extract.CategoryCLI])
	assert.Equal(t, 1, a.Categories()[extract.CategoryOther])
	assert.Equal(t, 4, a.Categories().Total())
	assert.Equal(t, a.Categories().Total(), a.Exact().Total())

	doc := a.Report()
	assert.Equal(t, "user_agent_analysis.txt", doc.File)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Chrome Browser: 2 requests", doc.Sections[0].Lines[0])
	assert.Equal(t, "2 requests: Mozilla/5.0 Chrome/91.0", doc.Sections[1].Lines[0])
	assert.Contains(t, doc.Sections[1].Lines, "1 requests: "+strings.Repeat("x", 100)+"...")
}

func TestEndpoints(t *testing.T) {
	a, err := NewEndpoints()
	require.NoError(t, err)

	observeAll(t, a,
		chromeLine,
		`1.1.1.1 - - [10/Oct/2023:13:55:36 +0000] "POST /api/users HTTP/1.1" 201 0 "-" "curl/8.0"`,
		`1.1.1.1 - - [10/Oct/2023:13:55:36 +0000] "GET /api/users HTTP/1.1" 200 0 "-" "curl/8.0"`,
		curlLine,
	)
	err = a.Observe(model.NewLogEntry("test", 5, "not a request"))
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Equal(t, 2, a.ByRequest()["GET /api/users"])
	assert.Equal(t, 1, a.ByRequest()["POST /api/users"])
	assert.Equal(t, 3, a.ByPath()["/api/users"])
	assert.Equal(t, 4, a.Total())
	assert.Equal(t, a.ByRequest().Total(), a.ByPath().Total())

	doc := a.Report()
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "     2 requests ( 50.0%) - GET /api/users", doc.Sections[0].Lines[0])
	assert.Equal(t, "     3 requests ( 75.0%) - /api/users", doc.Sections[1].Lines[0])
	assert.Equal(t, []string{
		"Total requests analyzed: 4",
		"Unique endpoints (with method): 3",
		"Unique endpoints (path only): 2",
	}, doc.Sections[2].Lines)
}

func TestEndpoints_Exclude(t *testing.T) {
	a, err := NewEndpoints("/static/**", "/health")
	require.NoError(t, err)

	err = a.Observe(model.NewLogEntry("test", 1, `1.1.1.1 "GET /static/css/app.css HTTP/1.1"`))
	assert.ErrorIs(t, err, ErrExcluded)
	err = a.Observe(model.NewLogEntry("test", 2, `1.1.1.1 "GET /health?check=1 HTTP/1.1"`))
	assert.ErrorIs(t, err, ErrExcluded)
	assert.NoError(t, a.Observe(model.NewLogEntry("test", 3, `1.1.1.1 "GET /api HTTP/1.1"`)))

	assert.Equal(t, 1, a.Total())
}

func TestEndpoints_InvalidPattern(t *testing.T) {
	_, err := NewEndpoints("[unclosed")
	assert.Error(t, err)
}

func TestSet_ObserveAndStats(t *testing.T) {
	s := NewSet(NewIPCounts(), NewUniqueIPs())

	var skipped []string
	onSkip := func(name string, entry *model.LogEntry, reason error) {
		skipped = append(skipped, fmt.Sprintf("%s:%d", name, entry.LineNo))
	}

	for _, e := range entries(chromeLine, "no ip") {
		require.NoError(t, s.Observe(context.Background(), e, onSkip))
	}

	assert.Equal(t, 2, s.Entries())
	assert.Equal(t, []string{"ip-counts:2", "unique-ips:2"}, skipped)
	assert.Equal(t, []Stats{
		{Name: NameIPCounts, Matched: 1, Skipped: 1},
		{Name: NameUniqueIPs, Matched: 1, Skipped: 1},
	}, s.Stats())
}

func TestSet_ObserveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSet(NewIPCounts())
	err := s.Observe(ctx, model.NewLogEntry("test", 1, chromeLine), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Entries())
}

func TestSet_MergeMatchesSequential(t *testing.T) {
	factory, err := NewSetFactory(config.AnalysesConfig{
		IPCounts:   config.IPCountsConfig{Enabled: true},
		UniqueIPs:  config.UniqueIPsConfig{Enabled: true},
		IPWindow:   config.IPWindowConfig{Enabled: true, Window: 10 * time.Second},
		UserAgents: config.UserAgentsConfig{Enabled: true, Truncate: 100},
		Endpoints:  config.EndpointsConfig{Enabled: true},
	})
	require.NoError(t, err)

	base := time.Date(2023, 10, 10, 13, 55, 36, 0, time.UTC)
	lines := []string{
		chromeLine,
		curlLine,
		windowLine("10.0.0.1", base, 0),
		windowLine("10.0.0.1", base, 4*time.Second),
		windowLine("10.0.0.1", base, 20*time.Second),
		"malformed",
		chromeLine,
	}
	ctx := context.Background()

	sequential := factory()
	for _, e := range entries(lines...) {
		require.NoError(t, sequential.Observe(ctx, e, nil))
	}

	// Split the input unevenly across three partials, merged in reverse.
	parts := []*Set{factory(), factory(), factory()}
	for i, e := range entries(lines...) {
		require.NoError(t, parts[(i*i)%3].Observe(ctx, e, nil))
	}
	merged := factory()
	for i := len(parts) - 1; i >= 0; i-- {
		require.NoError(t, merged.Merge(parts[i]))
	}

	assert.Equal(t, sequential.Entries(), merged.Entries())
	assert.Equal(t, sequential.Stats(), merged.Stats())
	assert.Equal(t, sequential.Reports(), merged.Reports())
}

func TestSet_MergeSizeMismatch(t *testing.T) {
	a := NewSet(NewIPCounts())
	b := NewSet(NewIPCounts(), NewUniqueIPs())
	assert.Error(t, a.Merge(b))
}

func TestNewSetFactory(t *testing.T) {
	_, err := NewSetFactory(config.AnalysesConfig{})
	assert.Error(t, err)

	_, err = NewSetFactory(config.AnalysesConfig{
		Endpoints: config.EndpointsConfig{Enabled: true, Exclude: []string{"[bad"}},
	})
	assert.Error(t, err)

	factory, err := NewSetFactory(config.AnalysesConfig{
		IPWindow:  config.IPWindowConfig{Enabled: true},
		IPCounts:  config.IPCountsConfig{Enabled: true},
		Endpoints: config.EndpointsConfig{Enabled: true},
	})
	require.NoError(t, err)

	s := factory()
	var names []string
	for _, a := range s.Analyzers() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{NameIPCounts, NameIPWindow, NameEndpoints}, names)
	assert.NotSame(t, s, factory())
}

func TestNewSetFactory_SharesCompiledExcludes(t *testing.T) {
	factory, err := NewSetFactory(config.AnalysesConfig{
		Endpoints: config.EndpointsConfig{Enabled: true, Exclude: []string{"/static/**"}},
	})
	require.NoError(t, err)

	first := factory().Analyzers()[0].(*Endpoints)
	second := factory().Analyzers()[0].(*Endpoints)
	require.Len(t, first.exclude, 1)
	assert.Same(t, &first.exclude[0], &second.exclude[0])

	line := entries(`10.0.0.1 - - [03/Jun/2025:10:09:02 +0000] "GET /static/app.js HTTP/1.1" 200 1 "-" "curl/7.64.1"`)[0]
	assert.ErrorIs(t, first.Observe(line), ErrExcluded)
	assert.ErrorIs(t, second.Observe(line), ErrExcluded)
}

func TestReportsAreIdempotent(t *testing.T) {
	a := NewUserAgents(nil, 100)
	observeAll(t, a, chromeLine, curlLine)
	assert.Equal(t, a.Report(), a.Report())
}
