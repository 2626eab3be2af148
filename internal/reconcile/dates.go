package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayFormat is the canonical calendar-day representation used across the
// ledger. Lexicographic order on these strings is chronological order.
const DayFormat = "2006-01-02"

// Today returns the current calendar day.
func Today() string {
	return time.Now().Format(DayFormat)
}

// ParseDay coerces the date representations found on stored records into a
// canonical day string. Older summaries carry RFC3339 timestamps or raw unix
// seconds instead of plain days; all three are accepted.
func ParseDay(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if t, err := time.Parse(DayFormat, raw); err == nil {
		return t.Format(DayFormat), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(DayFormat), true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC().Format(DayFormat), true
	}
	return "", false
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year int, month time.Month) (first, last string) {
	first = fmt.Sprintf("%04d-%02d-01", year, int(month))
	last = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Format(DayFormat)
	return first, last
}
