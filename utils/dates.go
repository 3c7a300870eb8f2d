package utils

import "time"

// DateOnly truncates a timestamp to midnight in its own location. Ticket
// windows are compared on the date component only, not time-of-day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable second of t's date, used as the
// inclusive upper bound when filtering schedules by start time.
func EndOfDay(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, 1).Add(-time.Second)
}
