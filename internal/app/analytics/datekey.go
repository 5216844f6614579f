// Package analytics implements the Resolution Recap computation core:
// date bucketing, streak detection, achievement rules, ranking, XP/leveling,
// and recap synthesis. Everything here is a pure function of already-fetched
// rows — no locks, no caches, recomputed fully on every read.
package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the day-granular date format used throughout the app.
const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string. The zero time is returned for
// malformed input; callers treat entry dates as a validated precondition.
func ParseDate(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

// DayKey returns the canonical "YYYY-MM-DD" key for a date.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey returns the "YYYY-MM" key for a date.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// WeekKey returns the "YYYY-Www" key for a date using the app's original
// week-numbering formula: ceil((daysSinceJan1 + weekday(Jan1) + 1) / 7).
// This is deliberately NOT ISO-8601 week numbering. Stored and derived
// values depend on this exact formula — do not swap in time.ISOWeek.
func WeekKey(t time.Time) string {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(jan1).Hours() / 24)
	week := (days+int(jan1.Weekday())+1+6) / 7 // ceil without floats
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// DaysBetween returns the whole-day difference between two day keys.
func DaysBetween(a, b string) int {
	ta, tb := ParseDate(a), ParseDate(b)
	return int(tb.Sub(ta).Hours() / 24)
}

// IsConsecutiveDay reports whether day key b immediately follows a.
func IsConsecutiveDay(a, b string) bool {
	return DaysBetween(a, b) == 1
}

// IsConsecutiveWeek reports whether week key b immediately follows a.
// Year wraparound is approximated: week >= 52 of one year is treated as
// adjacent to week 1 of the next, without calendar-exact ISO boundaries.
func IsConsecutiveWeek(a, b string) bool {
	aYear, aWeek, ok := splitWeekKey(a)
	if !ok {
		return false
	}
	bYear, bWeek, ok := splitWeekKey(b)
	if !ok {
		return false
	}
	if bYear == aYear && bWeek == aWeek+1 {
		return true
	}
	return bYear == aYear+1 && aWeek >= 52 && bWeek == 1
}

// IsConsecutiveMonth reports whether month key b immediately follows a.
func IsConsecutiveMonth(a, b string) bool {
	aYear, aMonth, ok := splitMonthKey(a)
	if !ok {
		return false
	}
	bYear, bMonth, ok := splitMonthKey(b)
	if !ok {
		return false
	}
	if bYear == aYear && bMonth == aMonth+1 {
		return true
	}
	return bYear == aYear+1 && aMonth == 12 && bMonth == 1
}

// SameOrConsecutiveWeek reports whether b is a's week or the next one.
// Used for the "current streak still live" check.
func SameOrConsecutiveWeek(a, b string) bool {
	return a == b || IsConsecutiveWeek(a, b)
}

// SameOrConsecutiveMonth reports whether b is a's month or the next one.
func SameOrConsecutiveMonth(a, b string) bool {
	return a == b || IsConsecutiveMonth(a, b)
}

func splitWeekKey(key string) (year, week int, ok bool) {
	parts := strings.SplitN(key, "-W", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return year, week, true
}

func splitMonthKey(key string) (year, month int, ok bool) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return year, month, true
}

// uniqueSorted deduplicates an already-ascending slice of keys, preserving
// order. Entry dates arrive sorted from storage.
func uniqueSorted(keys []string) []string {
	out := keys[:0:0]
	for i, k := range keys {
		if i == 0 || keys[i-1] != k {
			out = append(out, k)
		}
	}
	return out
}
