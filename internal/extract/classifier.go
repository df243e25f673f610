package extract

import (
	"strings"
)

// User-agent categories.
const (
	CategoryChrome  = "Chrome Browser"
	CategoryFirefox = "Firefox Browser"
	CategorySafari  = "Safari Browser"
	CategoryEdge    = "Edge Browser"
	CategoryBot     = "Bot/Crawler"
	CategoryMobile  = "Mobile Device"
	CategoryCLI     = "Command Line Tool"
	CategoryAPITool = "API Testing Tool"
	CategoryOther   = "Other/Unknown"
)

// Rule assigns Label to every user agent for which Match returns true.
// Match receives the lower-cased user agent.
type Rule struct {
	Label string
	Match func(ua string) bool
}

// Contains returns a predicate that is true when ua contains any of subs.
func Contains(subs ...string) func(string) bool {
	return func(ua string) bool {
		for _, s := range subs {
			if strings.Contains(ua, s) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the built-in classification order. Categories overlap by
// substring (Chrome agents also mention Safari), so order matters.
var DefaultRules = []Rule{
	{Label: CategoryChrome, Match: Contains("chrome")},
	{Label: CategoryFirefox, Match: Contains("firefox")},
	{Label: CategorySafari, Match: func(ua string) bool {
		return strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome")
	}},
	{Label: CategoryEdge, Match: Contains("edge")},
	{Label: CategoryBot, Match: Contains("bot", "crawler")},
	{Label: CategoryMobile, Match: Contains("mobile", "android", "iphone")},
	{Label: CategoryCLI, Match: Contains("curl", "wget")},
	{Label: CategoryAPITool, Match: Contains("postman")},
}

// Classifier maps a user agent to exactly one category. Rules are evaluated
// top to bottom and the first match wins; CategoryOther is the fallback.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier. With no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the category of ua.
func (c *Classifier) Classify(ua string) string {
	lower := strings.ToLower(ua)
	for _, r := range c.rules {
		if r.Match(lower) {
			return r.Label
		}
	}
	return CategoryOther
}

var requestPrefixes = []string{"GET", "POST", "PUT", "DELETE"}

// AcceptUserAgent reports whether ua can be a user agent. Empty strings and
// strings that start like a request line are rejected; those come from the
// matcher picking the request instead of the trailing field.
func AcceptUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	for _, p := range requestPrefixes {
		if strings.HasPrefix(ua, p) {
			return false
		}
	}
	return true
}

// UserAgent returns the trailing quoted field of line. A line needs at least
// two quoted fields (request and agent) for the last one to be considered.
// The second result is false when no candidate exists; the candidate may
// still fail AcceptUserAgent.
func UserAgent(line string) (string, bool) {
	fields := QuotedFields(line)
	if len(fields) < 2 {
		return "", false
	}
	return fields[len(fields)-1], true
}
