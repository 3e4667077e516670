// ABOUTME: Cutoff time parsing for bulk read marking of feed items
// ABOUTME: Accepts named periods, day counts like "7d" and plain or RFC3339 dates

package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// StartOfDay returns midnight of the day of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the most recent Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ParsePeriod converts a period to the cutoff it denotes relative to now.
// Supported values: "today", "yesterday", "week", "month", "<n>d" (n days
// before now), "2006-01-02" (local midnight) and RFC3339 timestamps.
func ParsePeriod(period string, now time.Time) (time.Time, bool) {
	period = strings.ToLower(strings.TrimSpace(period))
	switch period {
	case "today":
		return StartOfDay(now), true
	case "yesterday":
		return StartOfDay(now).AddDate(0, 0, -1), true
	case "week":
		return StartOfWeek(now), true
	case "month":
		return StartOfMonth(now), true
	}

	if days, ok := strings.CutSuffix(period, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), true
		}
	}
	if t, err := time.ParseInLocation(time.DateOnly, period, now.Location()); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(period)); err == nil {
		return t, true
	}
	return time.Time{}, false
}
