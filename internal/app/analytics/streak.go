package analytics

import (
	"math"
	"time"

	"github.com/recap-crew/recap/internal/domain"
)

// ComputeStreaks builds the full streak snapshot for one person from their
// raw entry dates (ascending, duplicates allowed). today anchors the
// "current streak still live" checks. Empty input yields an all-zero
// snapshot with the person's identity filled in.
func ComputeStreaks(person domain.Person, dates []string, today time.Time) domain.StreakData {
	data := domain.StreakData{
		PersonID:    person.ID,
		PersonName:  person.Name,
		PersonEmoji: person.Emoji,
	}
	if len(dates) == 0 {
		return data
	}

	data.TotalEntries = len(dates)
	data.FirstEntry = dates[0]
	data.LastEntry = dates[len(dates)-1]

	days := uniqueSorted(dates)

	daily := scanRuns(days, IsConsecutiveDay)
	data.LongestDailyStreak = daily.longest
	data.LongestDailyStreakStart = daily.longestStart
	data.LongestDailyStreakEnd = daily.longestEnd
	// The run ending at the last entry counts as current only while it is
	// at most one day behind today.
	if DaysBetween(days[len(days)-1], DayKey(today)) <= 1 {
		data.CurrentDailyStreak = daily.last
	}

	weeks := make([]string, len(days))
	for i, d := range days {
		weeks[i] = WeekKey(ParseDate(d))
	}
	weekly := scanRuns(uniqueSorted(weeks), IsConsecutiveWeek)
	data.LongestWeeklyStreak = weekly.longest
	data.LongestWeeklyStreakStart = weekly.longestStart
	data.LongestWeeklyStreakEnd = weekly.longestEnd
	if SameOrConsecutiveWeek(weekly.lastKey, WeekKey(today)) {
		data.CurrentWeeklyStreak = weekly.last
	}

	months := make([]string, len(days))
	for i, d := range days {
		months[i] = MonthKey(ParseDate(d))
	}
	monthly := scanRuns(uniqueSorted(months), IsConsecutiveMonth)
	data.LongestMonthlyStreak = monthly.longest
	if SameOrConsecutiveMonth(monthly.lastKey, MonthKey(today)) {
		data.CurrentMonthlyStreak = monthly.last
	}

	data.BusiestDay = modeKey(dates, func(d string) string {
		return ParseDate(d).Weekday().String()
	})
	data.BusiestMonth = modeKey(dates, func(d string) string {
		return ParseDate(d).Month().String()
	})

	// Average over the whole span from first to last entry, in weeks.
	weeksSpanned := (DaysBetween(data.FirstEntry, data.LastEntry) + 6) / 7
	if weeksSpanned < 1 {
		weeksSpanned = 1
	}
	data.EntriesPerWeekAvg = math.Round(float64(len(dates))/float64(weeksSpanned)*10) / 10

	return data
}

// runScan is the result of a single pass over sorted unique bucket keys.
type runScan struct {
	longest      int
	longestStart string
	longestEnd   string
	last         int    // length of the run ending at the final key
	lastKey      string // final key, "" for empty input
}

// scanRuns walks sorted unique keys once, tracking the longest run of
// consecutive buckets and the run that ends at the final key. The final
// run is flushed after the loop so a streak reaching the last entry is
// never dropped.
func scanRuns(keys []string, consecutive func(a, b string) bool) runScan {
	var s runScan
	if len(keys) == 0 {
		return s
	}
	runLen := 1
	runStart := keys[0]
	for i := 1; i < len(keys); i++ {
		if consecutive(keys[i-1], keys[i]) {
			runLen++
			continue
		}
		if runLen > s.longest {
			s.longest = runLen
			s.longestStart = runStart
			s.longestEnd = keys[i-1]
		}
		runLen = 1
		runStart = keys[i]
	}
	if runLen > s.longest {
		s.longest = runLen
		s.longestStart = runStart
		s.longestEnd = keys[len(keys)-1]
	}
	s.last = runLen
	s.lastKey = keys[len(keys)-1]
	return s
}

// modeKey returns the most frequent bucket over raw dates (duplicates
// count). Ties go to the bucket encountered first, so repeated calls on
// the same input agree.
func modeKey(dates []string, bucket func(string) string) string {
	counts := make(map[string]int)
	order := make([]string, 0, 8)
	for _, d := range dates {
		k := bucket(d)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	best, bestCount := "", 0
	for _, k := range order {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
