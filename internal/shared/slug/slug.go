package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// FromTitle lowercases s and collapses every non-alphanumeric run into "-".
func FromTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "course"
	}
	return s
}

// WithSuffix appends a short disambiguator, keeping the result under max bytes.
func WithSuffix(base, suffix string, max int) string {
	s := base + "-" + suffix
	if max > 0 && len(s) > max {
		cut := max - len(suffix) - 1
		if cut < 1 {
			return suffix
		}
		s = strings.TrimRight(base[:cut], "-") + "-" + suffix
	}
	return s
}
