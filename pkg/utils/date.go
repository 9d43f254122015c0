package utils

import (
	"time"
)

// TimeNowUTC is the single clock source for usage accounting.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// DayKey returns midnight UTC of the calendar day containing t.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodayKey is DayKey(TimeNowUTC()).
func TodayKey() time.Time {
	return DayKey(TimeNowUTC())
}

func PrettyDate(date time.Time) string {
	return date.UTC().Format("02 Jan 2006 - 15:04 UTC")
}

// DaysBetween counts whole days from start to end, floored.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
