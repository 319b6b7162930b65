package utils

import (
	"log"
	"time"
)

// articleDateLayouts covers the date formats seen across the news API and
// RSS sources.
var articleDateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeNowSF returns the current time in the San Francisco timezone.
func TimeNowSF() time.Time {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MostRecentSunday returns midnight of the most recent Sunday on or before t.
func MostRecentSunday(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekKey returns the storage identity of t's week: midnight UTC of the most
// recent Sunday on or before t's calendar date. Keys derived from a local
// wall-clock time and from a parsed YYYY-MM-DD date compare equal, so every
// writer and reader of week_of must go through this.
func WeekKey(t time.Time) time.Time {
	sunday := MostRecentSunday(t)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseArticleDate parses a published-date string in any of the supported
// layouts. The boolean reports whether parsing succeeded.
func ParseArticleDate(s string) (time.Time, bool) {
	for _, layout := range articleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
