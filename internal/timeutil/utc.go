package timeutil

import "time"

// Now returns the current time in UTC. All persisted timestamps and all
// timestamps sent to Business Central are UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// ToUTC converts any time to UTC
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// ParseDate parses a calendar date in the wire format (YYYY-MM-DD)
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as a calendar date (YYYY-MM-DD)
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay returns the start of day (00:00:00) in UTC for the given time
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)
