package storecheck

import (
	"time"
)

// TimeFormat is the timestamp format in the history and the snapshot.
// It is ISO 8601 in UTC with milliseconds, like "2025-10-01T12:34:56.789Z".
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTime formats t in TimeFormat after converting to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a timestamp in the history.
// It accepts RFC 3339 with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func durationFromMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
