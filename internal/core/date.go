package core

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// NewDate creates a UTC midnight time from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date string in YYYY-MM-DD format as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidStartDate
	}
	return t, nil
}

// AddMonths advances t by n calendar months keeping the day of month.
//
// When the target month is shorter than the day of month, the date rolls
// forward into the following month the way time.AddDate normalizes it:
//
//	AddMonths(2024-01-31, 1) -> 2024-03-02
//	AddMonths(2023-01-31, 1) -> 2023-03-03
//
// Callers that want month-end dates must pass a start date on or before the 28th.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// DateOf returns the calendar date of t, read in t's own location, as a UTC
// midnight. 2024-03-01T00:00+02:00 stays 2024-03-01.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
