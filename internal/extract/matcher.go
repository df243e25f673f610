// Package extract pulls individual fields out of access-log lines.
//
// Fields are located independently by pattern search rather than by
// positional parsing, so a line that is only partially well-formed still
// yields whatever fields it does contain.
package extract

import (
	"regexp"
	"strings"
)

// Patterns for the fields of an Apache/Nginx combined log line.
const (
	IPv4Pattern        = `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`
	ClientTimePattern  = `^(\d+\.\d+\.\d+\.\d+).*?\[([^\]]+)\]`
	QuotedPattern      = `"([^"]*)"`
	HTTPRequestPattern = `"(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\s+([^\s]+)`
)

var (
	ipv4Matcher       = MustMatcher(IPv4Pattern)
	clientTimeMatcher = MustMatcher(ClientTimePattern)
	quotedMatcher     = MustMatcher(QuotedPattern)
	requestMatcher    = MustMatcher(HTTPRequestPattern)
)

// Matcher applies a compiled pattern to a line and returns its capture groups.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern into a Matcher.
func NewMatcher(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re}, nil
}

// MustMatcher is like NewMatcher but panics on an invalid pattern.
func MustMatcher(pattern string) *Matcher {
	return &Matcher{re: regexp.MustCompile(pattern)}
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.re.String()
}

// Match returns the capture groups of the leftmost match.
// For a pattern without groups the whole match is returned as the only element.
func (m *Matcher) Match(line string) ([]string, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}
	return groups(sub), true
}

// MatchAll returns the capture groups of every non-overlapping match.
func (m *Matcher) MatchAll(line string) [][]string {
	all := m.re.FindAllStringSubmatch(line, -1)
	out := make([][]string, 0, len(all))
	for _, sub := range all {
		out = append(out, groups(sub))
	}
	return out
}

// Last returns the capture groups of the rightmost match.
func (m *Matcher) Last(line string) ([]string, bool) {
	all := m.MatchAll(line)
	if len(all) == 0 {
		return nil, false
	}
	return all[len(all)-1], true
}

func groups(sub []string) []string {
	if len(sub) == 1 {
		return sub
	}
	return sub[1:]
}

// IPv4s returns every IPv4 literal found anywhere in line, in order of appearance.
func IPv4s(line string) []string {
	all := ipv4Matcher.MatchAll(line)
	out := make([]string, 0, len(all))
	for _, g := range all {
		out = append(out, g[0])
	}
	return out
}

// ClientTimestamp returns the leading client IP and the first bracketed
// timestamp of line. Surrounding whitespace is ignored.
func ClientTimestamp(line string) (ip, timestamp string, ok bool) {
	g, ok := clientTimeMatcher.Match(strings.TrimSpace(line))
	if !ok {
		return "", "", false
	}
	return g[0], g[1], true
}

// QuotedFields returns the contents of every double-quoted substring of line.
func QuotedFields(line string) []string {
	all := quotedMatcher.MatchAll(strings.TrimSpace(line))
	out := make([]string, 0, len(all))
	for _, g := range all {
		out = append(out, g[0])
	}
	return out
}

// Request returns the HTTP method and raw path of the first quoted request
// line found in line.
func Request(line string) (method, path string, ok bool) {
	g, ok := requestMatcher.Match(strings.TrimSpace(line))
	if !ok {
		return "", "", false
	}
	return g[0], g[1], true
}
