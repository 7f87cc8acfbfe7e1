package utils

import "time"

// DaysAgo returns the instant n whole days before now, in UTC.
func DaysAgo(now time.Time, n int) time.Time {
	return now.UTC().AddDate(0, 0, -n)
}

// PrettyDate formats t for spreadsheets and logs.
func PrettyDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
