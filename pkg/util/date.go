package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseCalendarDate accepts YYYY-MM-DD and RFC3339 forms only and returns the UTC
// calendar day (midnight).
func ParseCalendarDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

// minUnixDigits rejects short digit runs such as 20240105 that are compact dates,
// not timestamps.
const minUnixDigits = 9

// ParseDate is ParseCalendarDate plus unix seconds of at least nine digits.
func ParseDate(s string) (time.Time, bool) {
	if t, ok := ParseCalendarDate(s); ok {
		return t, true
	}
	s = strings.TrimSpace(s)
	if len(s) < minUnixDigits {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return day(time.Unix(ts, 0).UTC()), true
	}
	return time.Time{}, false
}

// AddDays returns the calendar day n days after t.
func AddDays(t time.Time, n int) time.Time {
	return day(t).AddDate(0, 0, n)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
