package extract

import (
	"strings"
)

// NormalizePath strips the query string from path.
func NormalizePath(path string) string {
	clean, _, _ := strings.Cut(path, "?")
	return clean
}

// EndpointKey joins a method and a normalized path into a "METHOD path" key.
func EndpointKey(method, path string) string {
	return method + " " + path
}

// Percentage returns count as a percentage of total, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
