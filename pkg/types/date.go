package types

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate parses an ISO calendar date (no time component).
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// TruncateToDate drops the time-of-day component, keeping UTC calendar identity.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date used by budget snapshots.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
