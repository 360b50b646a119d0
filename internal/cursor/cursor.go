// Package cursor parses client-supplied sync timestamps. Clients send
// whatever their last server echo looked like, so several layouts are
// accepted and anything else is treated as absent.
package cursor

import (
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse returns the cursor instant and whether s was usable. Timestamps
// without a zone are read as UTC.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders t the way cursors are echoed back to clients.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
