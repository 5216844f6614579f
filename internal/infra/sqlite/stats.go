package sqlite

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
)

// ─── Stats Queries ──────────────────────────────────────────────────────────
// Aggregations that are cheap in SQL stay in SQL. Anything touching the
// app's custom week numbering is bucketed in Go with analytics.WeekKey so
// every surface agrees on week boundaries.

const seasonStatsSelect = `
	SELECT p.id, p.name, p.emoji, m.id, m.name, COUNT(e.id)
	FROM people p
	CROSS JOIN metrics m`

// SeasonStats returns the full leaderboard grid for a season: one row per
// (active person, active metric) pair, zero counts included.
func (d *DB) SeasonStats(seasonID int64) ([]domain.StatRow, error) {
	return d.queryStatRows(
		seasonStatsSelect+`
		 LEFT JOIN entries e ON e.person_id = p.id AND e.metric_id = m.id
		   AND e.season_id = ? AND e.deleted_at IS NULL
		 WHERE p.is_active = 1 AND m.is_active = 1
		 GROUP BY p.id, m.id
		 ORDER BY p.name, m.name`,
		seasonID)
}

// SeasonStatsInRange is SeasonStats restricted to an inclusive date range.
func (d *DB) SeasonStatsInRange(seasonID int64, startDate, endDate string) ([]domain.StatRow, error) {
	return d.queryStatRows(
		seasonStatsSelect+`
		 LEFT JOIN entries e ON e.person_id = p.id AND e.metric_id = m.id
		   AND e.season_id = ? AND e.entry_date >= ? AND e.entry_date <= ?
		   AND e.deleted_at IS NULL
		 WHERE p.is_active = 1 AND m.is_active = 1
		 GROUP BY p.id, m.id
		 ORDER BY p.name, m.name`,
		seasonID, startDate, endDate)
}

// SeasonStatsFiltered narrows the leaderboard to a named period: "today",
// "week" (Monday-start), "month", or "all". Unknown periods fall back to
// "all", matching the permissive dashboard filter.
func (d *DB) SeasonStatsFiltered(seasonID int64, period string, today time.Time) ([]domain.StatRow, error) {
	endDate := analytics.DayKey(today)
	var startDate string
	switch period {
	case "today":
		startDate = endDate
	case "week":
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7 // Sunday belongs to the week that started last Monday
		}
		startDate = analytics.DayKey(today.AddDate(0, 0, 1-offset))
	case "month":
		startDate = analytics.DayKey(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	default:
		startDate = "1970-01-01"
	}
	return d.SeasonStatsInRange(seasonID, startDate, endDate)
}

// MonthlyStats returns per-month entry counts per (person, metric).
func (d *DB) MonthlyStats(seasonID int64) ([]domain.MonthlyStatRow, error) {
	rows, err := d.db.Query(
		`SELECT strftime('%Y-%m', e.entry_date), p.id, p.name, p.emoji, m.id, m.name, COUNT(e.id)
		 FROM entries e
		 JOIN people p ON e.person_id = p.id
		 JOIN metrics m ON e.metric_id = m.id
		 WHERE e.season_id = ? AND e.deleted_at IS NULL
		 GROUP BY strftime('%Y-%m', e.entry_date), p.id, m.id
		 ORDER BY strftime('%Y-%m', e.entry_date), p.name, m.name`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.MonthlyStatRow
	for rows.Next() {
		var r domain.MonthlyStatRow
		if err := rows.Scan(&r.Month, &r.PersonID, &r.PersonName, &r.PersonEmoji,
			&r.MetricID, &r.MetricName, &r.Count); err != nil {
			return nil, err
		}
		stats = append(stats, r)
	}
	return stats, rows.Err()
}

// DailyStats returns per-day entry counts per person.
func (d *DB) DailyStats(seasonID int64) ([]domain.DailyStatRow, error) {
	rows, err := d.db.Query(
		`SELECT e.entry_date, p.id, p.name, COUNT(e.id)
		 FROM entries e
		 JOIN people p ON e.person_id = p.id
		 WHERE e.season_id = ? AND e.deleted_at IS NULL
		 GROUP BY e.entry_date, p.id
		 ORDER BY e.entry_date, p.id`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.DailyStatRow
	for rows.Next() {
		var r domain.DailyStatRow
		if err := rows.Scan(&r.Date, &r.PersonID, &r.PersonName, &r.Count); err != nil {
			return nil, err
		}
		stats = append(stats, r)
	}
	return stats, rows.Err()
}

// WeeklyStats buckets entry counts by the app's week key per
// (person, metric), weeks ascending.
func (d *DB) WeeklyStats(seasonID int64) ([]domain.WeeklyStatRow, error) {
	rows, err := d.db.Query(
		`SELECT entry_date, person_id, metric_id
		 FROM entries
		 WHERE season_id = ? AND deleted_at IS NULL
		 ORDER BY entry_date, person_id, metric_id`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type bucketKey struct {
		week     string
		personID int64
		metricID int64
	}
	counts := make(map[bucketKey]int)
	for rows.Next() {
		var date string
		var personID, metricID int64
		if err := rows.Scan(&date, &personID, &metricID); err != nil {
			return nil, err
		}
		k := bucketKey{analytics.WeekKey(analytics.ParseDate(date)), personID, metricID}
		counts[k]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]domain.WeeklyStatRow, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, domain.WeeklyStatRow{
			Week: k.week, PersonID: k.personID, MetricID: k.metricID, Count: n,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Week != stats[j].Week {
			return stats[i].Week < stats[j].Week
		}
		if stats[i].PersonID != stats[j].PersonID {
			return stats[i].PersonID < stats[j].PersonID
		}
		return stats[i].MetricID < stats[j].MetricID
	})
	return stats, nil
}

// DayOfWeekStats returns the weekday histogram, all seven days present.
func (d *DB) DayOfWeekStats(seasonID int64) ([]domain.DayOfWeekStat, error) {
	rows, err := d.db.Query(
		`SELECT CAST(strftime('%w', entry_date) AS INTEGER), COUNT(*)
		 FROM entries
		 WHERE season_id = ? AND deleted_at IS NULL
		 GROUP BY 1 ORDER BY 1`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]int, 7)
	total := 0
	for rows.Next() {
		var day, n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayNames := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	stats := make([]domain.DayOfWeekStat, 7)
	for i, name := range dayNames {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(counts[i]) * 100 / float64(total)))
		}
		stats[i] = domain.DayOfWeekStat{Day: name, DayIndex: i, Count: counts[i], Percentage: pct}
	}
	return stats, nil
}

// StreaksForMetric computes the full streak snapshot per active person
// for one metric. Every active person appears, entry-less ones with an
// all-zero snapshot, ordered by name.
func (d *DB) StreaksForMetric(seasonID, metricID int64, today time.Time) ([]domain.StreakData, error) {
	rows, err := d.db.Query(
		`SELECT person_id, entry_date
		 FROM entries
		 WHERE season_id = ? AND metric_id = ? AND deleted_at IS NULL
		 ORDER BY person_id, entry_date`, seasonID, metricID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	datesByPerson := make(map[int64][]string)
	for rows.Next() {
		var personID int64
		var date string
		if err := rows.Scan(&personID, &date); err != nil {
			return nil, err
		}
		datesByPerson[personID] = append(datesByPerson[personID], date)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	people, err := d.ActivePeople()
	if err != nil {
		return nil, err
	}
	streaks := make([]domain.StreakData, 0, len(people))
	for _, p := range people {
		streaks = append(streaks, analytics.ComputeStreaks(p, datesByPerson[p.ID], today))
	}
	return streaks, nil
}

// PersonalBests returns each active person's records: busiest single day,
// week, and month, plus the longest gap between entries when over a day.
func (d *DB) PersonalBests(seasonID int64) (map[int64][]domain.PersonalBest, error) {
	people, err := d.ActivePeople()
	if err != nil {
		return nil, err
	}

	bests := make(map[int64][]domain.PersonalBest, len(people))
	for _, p := range people {
		dates, dayCounts, err := d.personDayCounts(seasonID, p.ID)
		if err != nil {
			return nil, err
		}
		var personBests []domain.PersonalBest

		if date, n := maxCount(dates, dayCounts, func(d string) string { return d }); n > 0 {
			personBests = append(personBests, domain.PersonalBest{
				Type: "best_day", Value: n, Date: date,
				Details: plural(n, "entry", "entries") + " on " + date,
			})
		}
		if week, n := maxCount(dates, dayCounts, func(d string) string {
			return analytics.WeekKey(analytics.ParseDate(d))
		}); n > 0 {
			personBests = append(personBests, domain.PersonalBest{
				Type: "best_week", Value: n,
				Details: plural(n, "entry", "entries") + " in " + week,
			})
		}
		if month, n := maxCount(dates, dayCounts, func(d string) string { return d[:7] }); n > 0 {
			personBests = append(personBests, domain.PersonalBest{
				Type: "best_month", Value: n,
				Details: plural(n, "entry", "entries") + " in " + month,
			})
		}
		if gap, start, end := longestGap(dates); gap > 1 {
			personBests = append(personBests, domain.PersonalBest{
				Type: "longest_gap", Value: gap,
				Details: plural(gap, "day", "days") + " gap (" + start + " to " + end + ")",
			})
		}
		bests[p.ID] = personBests
	}
	return bests, nil
}

// ConsistencyScores ranks active people by the share of elapsed season
// weeks in which they logged at least one entry, most consistent first.
func (d *DB) ConsistencyScores(seasonID int64, today time.Time) ([]domain.ConsistencyScore, error) {
	season, err := d.seasonByID(seasonID)
	if err != nil {
		return nil, err
	}
	yearStart := time.Date(season.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	elapsedDays := int(today.Sub(yearStart).Hours() / 24)
	totalWeeks := (elapsedDays + 6) / 7
	if totalWeeks < 1 {
		totalWeeks = 1
	}

	people, err := d.ActivePeople()
	if err != nil {
		return nil, err
	}
	scores := make([]domain.ConsistencyScore, 0, len(people))
	for _, p := range people {
		dates, dayCounts, err := d.personDayCounts(seasonID, p.ID)
		if err != nil {
			return nil, err
		}
		weekCounts := make(map[string]int)
		for _, date := range dates {
			weekCounts[analytics.WeekKey(analytics.ParseDate(date))] += dayCounts[date]
		}
		fourPlus := 0
		for _, n := range weekCounts {
			if n >= 4 {
				fourPlus++
			}
		}
		gap, _, _ := longestGap(dates)
		scores = append(scores, domain.ConsistencyScore{
			PersonID:              p.ID,
			PersonName:            p.Name,
			PersonEmoji:           p.Emoji,
			TotalWeeks:            totalWeeks,
			ActiveWeeks:           len(weekCounts),
			ConsistencyPercentage: int(math.Round(float64(len(weekCounts)) * 100 / float64(totalWeeks))),
			WeeksWithFourPlus:     fourPlus,
			LongestGapDays:        gap,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].ConsistencyPercentage > scores[j].ConsistencyPercentage
	})
	return scores, nil
}

// CumulativeStats returns each person's running entry total per active day
// alongside the pace their yearly goal implies. People without goals are
// paced against a default of 100 entries.
func (d *DB) CumulativeStats(seasonID int64) ([]domain.CumulativePoint, error) {
	season, err := d.seasonByID(seasonID)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT e.entry_date, e.person_id, p.name, p.emoji, COUNT(*)
		 FROM entries e
		 JOIN people p ON e.person_id = p.id
		 WHERE e.season_id = ? AND e.deleted_at IS NULL
		 GROUP BY e.entry_date, e.person_id
		 ORDER BY e.entry_date, e.person_id`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals, err := d.GoalsForSeason(seasonID)
	if err != nil {
		return nil, err
	}
	goalByPerson := make(map[int64]int)
	for _, g := range goals {
		goalByPerson[g.PersonID] += g.Target
	}

	yearStart := time.Date(season.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	running := make(map[int64]int)
	var points []domain.CumulativePoint
	for rows.Next() {
		var pt domain.CumulativePoint
		var n int
		if err := rows.Scan(&pt.Date, &pt.PersonID, &pt.PersonName, &pt.PersonEmoji, &n); err != nil {
			return nil, err
		}
		running[pt.PersonID] += n
		pt.Cumulative = running[pt.PersonID]

		dayOfYear := int(analytics.ParseDate(pt.Date).Sub(yearStart).Hours()/24) + 1
		yearlyGoal := goalByPerson[pt.PersonID]
		if yearlyGoal == 0 {
			yearlyGoal = 100
		}
		pt.Expected = int(math.Round(float64(dayOfYear) / 365 * float64(yearlyGoal)))
		points = append(points, pt)
	}
	return points, rows.Err()
}

// StreakWarnings flags daily streaks of 2+ whose last entry was exactly
// yesterday: log today or lose it.
func (d *DB) StreakWarnings(seasonID int64, today time.Time) ([]domain.StreakWarning, error) {
	metrics, err := d.ActiveMetrics()
	if err != nil {
		return nil, err
	}
	todayKey := analytics.DayKey(today)

	var warnings []domain.StreakWarning
	for _, m := range metrics {
		streaks, err := d.StreaksForMetric(seasonID, m.ID, today)
		if err != nil {
			return nil, err
		}
		for _, s := range streaks {
			if s.CurrentDailyStreak < 2 || s.LastEntry == "" {
				continue
			}
			if daysSince := analytics.DaysBetween(s.LastEntry, todayKey); daysSince == 1 {
				warnings = append(warnings, domain.StreakWarning{
					PersonID:      s.PersonID,
					PersonName:    s.PersonName,
					PersonEmoji:   s.PersonEmoji,
					MetricName:    m.Name,
					MetricEmoji:   m.Emoji,
					CurrentStreak: s.CurrentDailyStreak,
					LastEntry:     s.LastEntry,
					DaysSince:     daysSince,
				})
			}
		}
	}
	return warnings, nil
}

// ─── Sport Tag Stats ────────────────────────────────────────────────────────

var sportEmojis = map[string]string{
	"running":    "🏃",
	"cycling":    "🚴",
	"swimming":   "🏊",
	"walking":    "🚶",
	"gym":        "🏋️",
	"yoga":       "🧘",
	"tennis":     "🎾",
	"basketball": "🏀",
	"soccer":     "⚽",
	"hiking":     "🥾",
	"skating":    "⛸️",
	"skiing":     "⛷️",
	"rowing":     "🚣",
	"fitness":    "💪",
	"other":      "🏃",
}

// SportTotals summarizes tagged sporting entries per sport, biggest first.
// Returns nil when no "Sporting" metric exists.
func (d *DB) SportTotals(seasonID int64) ([]domain.SportTotal, error) {
	metric, err := d.sportingMetric()
	if err != nil || metric == nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT tags, COUNT(*)
		 FROM entries
		 WHERE season_id = ? AND metric_id = ? AND deleted_at IS NULL
		   AND tags IS NOT NULL AND tags != ''
		 GROUP BY tags ORDER BY COUNT(*) DESC`, seasonID, metric.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.SportTotal
	grand := 0
	for rows.Next() {
		var t domain.SportTotal
		if err := rows.Scan(&t.Tag, &t.Total); err != nil {
			return nil, err
		}
		grand += t.Total
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range totals {
		emoji, ok := sportEmojis[strings.ToLower(totals[i].Tag)]
		if !ok {
			emoji = "🏃"
		}
		totals[i].Emoji = emoji
		if grand > 0 {
			totals[i].Percentage = int(math.Round(float64(totals[i].Total) * 100 / float64(grand)))
		}
	}
	return totals, nil
}

// SportProgression returns per-sport monthly counts with running totals,
// for the trend chart. Returns nil when no "Sporting" metric exists.
func (d *DB) SportProgression(seasonID int64) ([]domain.SportProgressionRow, error) {
	metric, err := d.sportingMetric()
	if err != nil || metric == nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT tags, strftime('%Y-%m', entry_date), COUNT(*)
		 FROM entries
		 WHERE season_id = ? AND metric_id = ? AND deleted_at IS NULL
		   AND tags IS NOT NULL AND tags != ''
		 GROUP BY tags, strftime('%Y-%m', entry_date)
		 ORDER BY tags, strftime('%Y-%m', entry_date)`, seasonID, metric.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	running := make(map[string]int)
	var progression []domain.SportProgressionRow
	for rows.Next() {
		var r domain.SportProgressionRow
		if err := rows.Scan(&r.Tag, &r.Month, &r.Count); err != nil {
			return nil, err
		}
		running[r.Tag] += r.Count
		r.Cumulative = running[r.Tag]
		progression = append(progression, r)
	}
	return progression, rows.Err()
}

func (d *DB) sportingMetric() (*domain.Metric, error) {
	metrics, err := d.ActiveMetrics()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		if strings.EqualFold(m.Name, "Sporting") {
			return &m, nil
		}
	}
	return nil, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (d *DB) queryStatRows(query string, args ...any) ([]domain.StatRow, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.StatRow
	for rows.Next() {
		var r domain.StatRow
		if err := rows.Scan(&r.PersonID, &r.PersonName, &r.PersonEmoji,
			&r.MetricID, &r.MetricName, &r.Count); err != nil {
			return nil, err
		}
		stats = append(stats, r)
	}
	return stats, rows.Err()
}

// personDayCounts returns a person's distinct entry dates (ascending) and
// the entry count per date.
func (d *DB) personDayCounts(seasonID, personID int64) ([]string, map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT entry_date, COUNT(*)
		 FROM entries
		 WHERE season_id = ? AND person_id = ? AND deleted_at IS NULL
		 GROUP BY entry_date ORDER BY entry_date`, seasonID, personID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var dates []string
	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var n int
		if err := rows.Scan(&date, &n); err != nil {
			return nil, nil, err
		}
		dates = append(dates, date)
		counts[date] = n
	}
	return dates, counts, rows.Err()
}

// maxCount buckets per-day counts and returns the biggest bucket. Ties go
// to the earliest bucket.
func maxCount(dates []string, dayCounts map[string]int, bucket func(string) string) (string, int) {
	sums := make(map[string]int)
	var order []string
	for _, date := range dates {
		k := bucket(date)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += dayCounts[date]
	}
	bestKey, best := "", 0
	for _, k := range order {
		if sums[k] > best {
			bestKey, best = k, sums[k]
		}
	}
	return bestKey, best
}

// longestGap finds the widest day gap between consecutive distinct dates.
func longestGap(dates []string) (gap int, start, end string) {
	for i := 1; i < len(dates); i++ {
		if d := analytics.DaysBetween(dates[i-1], dates[i]); d > gap {
			gap, start, end = d, dates[i-1], dates[i]
		}
	}
	return gap, start, end
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + pluralForm
}
