// Package datestr normalizes the ISO date strings carried in profile fields.
package datestr

import (
	"strings"
	"time"
)

// Layout is the canonical at-rest date format.
const Layout = "2006-01-02"

var acceptedLayouts = []string{
	Layout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// Canonical trims the input and, when it parses as a date in one of the
// accepted layouts, reformats it as YYYY-MM-DD. Unparseable non-empty input
// is returned trimmed rather than rejected; an empty input stays empty.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout)
		}
	}
	return s
}

// Year extracts the year from a date string in an accepted layout.
func Year(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}
