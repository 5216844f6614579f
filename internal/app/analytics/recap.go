package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recap-crew/recap/internal/domain"
)

// RecapInputs are the precomputed season aggregates the recap page
// post-processes. All slices come straight from storage queries.
type RecapInputs struct {
	Stats        []domain.StatRow        // per (person, metric) totals
	Streaks      map[int64][]domain.StreakData // keyed by metric ID
	MonthlyStats []domain.MonthlyStatRow
	Metrics      []domain.Metric // active, display order
	People       []domain.Person // active
	Countries    []domain.CountryStats // sorted by count descending
}

type personTotal struct {
	name  string
	emoji string
	total int
}

func personTotals(stats []domain.StatRow) ([]personTotal, map[string]personTotal) {
	byName := make(map[string]personTotal)
	order := make([]string, 0, 8)
	for _, s := range stats {
		pt, seen := byName[s.PersonName]
		if !seen {
			pt = personTotal{name: s.PersonName, emoji: s.PersonEmoji}
			order = append(order, s.PersonName)
		}
		pt.total += s.Count
		byName[s.PersonName] = pt
	}
	totals := make([]personTotal, 0, len(order))
	for _, name := range order {
		totals = append(totals, byName[name])
	}
	// Stable sort keeps first-encountered winners on ties.
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].total > totals[j].total })
	return totals, byName
}

// GenerateAwards builds the ordered award list for the reveal page.
// Every award is gated on a non-trivial value so an empty or sparse
// season produces few (possibly zero) awards rather than nonsense ones.
func GenerateAwards(in RecapInputs) []domain.Award {
	var awards []domain.Award

	totals, byName := personTotals(in.Stats)

	if len(in.Countries) > 0 && in.Countries[0].CountryCount > 0 {
		top := in.Countries[0]
		awards = append(awards, domain.Award{
			ID:          "most-traveled",
			Title:       "World Traveler",
			Emoji:       "🌍",
			PersonName:  top.PersonName,
			PersonEmoji: top.PersonEmoji,
			Description: "Visited the most countries this year",
			Value:       fmt.Sprintf("%d countries", top.CountryCount),
		})
	}

	if len(totals) > 0 && totals[0].total > 0 {
		awards = append(awards, domain.Award{
			ID:          "most-active",
			Title:       "Most Active",
			Emoji:       "🏆",
			PersonName:  totals[0].name,
			PersonEmoji: totals[0].emoji,
			Description: "Most total entries across all metrics",
			Value:       fmt.Sprintf("%d entries", totals[0].total),
		})
	}

	for _, metric := range in.Metrics {
		rows := statsForMetric(in.Stats, metric.Name)
		if len(rows) > 0 && rows[0].Count > 0 {
			lower := strings.ToLower(metric.Name)
			awards = append(awards, domain.Award{
				ID:          lower + "-champion",
				Title:       metric.Name + " Champion",
				Emoji:       metric.Emoji,
				PersonName:  rows[0].PersonName,
				PersonEmoji: rows[0].PersonEmoji,
				Description: fmt.Sprintf("Most %s entries", lower),
				Value:       fmt.Sprintf("%d times", rows[0].Count),
			})
		}
	}

	for _, metric := range in.Metrics {
		lower := strings.ToLower(metric.Name)
		if champ, ok := topStreak(in.Streaks[metric.ID], func(s domain.StreakData) int { return s.LongestDailyStreak }); ok && champ.LongestDailyStreak > 1 {
			awards = append(awards, domain.Award{
				ID:          lower + "-daily-streak",
				Title:       metric.Name + " Streak Master",
				Emoji:       "🔥",
				PersonName:  champ.PersonName,
				PersonEmoji: champ.PersonEmoji,
				Description: fmt.Sprintf("Longest consecutive days of %s", lower),
				Value:       fmt.Sprintf("%d days in a row", champ.LongestDailyStreak),
			})
		}
		if champ, ok := topStreak(in.Streaks[metric.ID], func(s domain.StreakData) int { return s.LongestWeeklyStreak }); ok && champ.LongestWeeklyStreak > 2 {
			awards = append(awards, domain.Award{
				ID:          lower + "-consistent",
				Title:       metric.Name + " Consistency King",
				Emoji:       "📅",
				PersonName:  champ.PersonName,
				PersonEmoji: champ.PersonEmoji,
				Description: fmt.Sprintf("Most consistent weekly %s", lower),
				Value:       fmt.Sprintf("%d weeks straight", champ.LongestWeeklyStreak),
			})
		}
	}

	// Late bloomer: biggest second-half jump over the first half, with a
	// floor so a quiet season doesn't hand out the award for +1.
	firstHalf := make(map[string]int)
	secondHalf := make(map[string]int)
	secondOrder := make([]string, 0, 8)
	for _, s := range in.MonthlyStats {
		month := monthNumber(s.Month)
		if month <= 6 {
			firstHalf[s.PersonName] += s.Count
		} else {
			if _, seen := secondHalf[s.PersonName]; !seen {
				secondOrder = append(secondOrder, s.PersonName)
			}
			secondHalf[s.PersonName] += s.Count
		}
	}
	bestImprovement := 0
	var bloomer string
	for _, name := range secondOrder {
		improvement := secondHalf[name] - firstHalf[name]
		if improvement > bestImprovement && secondHalf[name] > 0 {
			bestImprovement = improvement
			bloomer = name
		}
	}
	if bloomer != "" && bestImprovement > 5 {
		awards = append(awards, domain.Award{
			ID:          "late-bloomer",
			Title:       "Late Bloomer",
			Emoji:       "🌸",
			PersonName:  bloomer,
			PersonEmoji: byName[bloomer].emoji,
			Description: "Most improvement in the second half of the year",
			Value:       fmt.Sprintf("+%d more entries", bestImprovement),
		})
	}

	// Early starter: busiest January, floor of 3 entries.
	janTotals := make(map[string]int)
	janOrder := make([]string, 0, 8)
	for _, s := range in.MonthlyStats {
		if monthNumber(s.Month) == 1 {
			if _, seen := janTotals[s.PersonName]; !seen {
				janOrder = append(janOrder, s.PersonName)
			}
			janTotals[s.PersonName] += s.Count
		}
	}
	bestJan, bestJanCount := "", 0
	for _, name := range janOrder {
		if janTotals[name] > bestJanCount {
			bestJan, bestJanCount = name, janTotals[name]
		}
	}
	if bestJan != "" && bestJanCount > 3 {
		awards = append(awards, domain.Award{
			ID:          "early-starter",
			Title:       "New Year Enthusiast",
			Emoji:       "🎉",
			PersonName:  bestJan,
			PersonEmoji: byName[bestJan].emoji,
			Description: "Most active in January",
			Value:       fmt.Sprintf("%d entries in January", bestJanCount),
		})
	}

	return awards
}

// GenerateTrivia builds the recap quiz from the same aggregates.
func GenerateTrivia(in RecapInputs) []domain.TriviaQuestion {
	var trivia []domain.TriviaQuestion

	uniqueCountries := make(map[string]bool)
	for _, c := range in.Countries {
		for _, code := range c.Countries {
			uniqueCountries[code] = true
		}
	}
	if len(in.Countries) > 0 && in.Countries[0].CountryCount > 0 {
		top := in.Countries[0]
		hint := strings.Join(firstN(top.Countries, 2), ", ") + "..."
		trivia = append(trivia,
			domain.TriviaQuestion{
				ID:       "most-traveled-person",
				Question: "Who visited the most countries this year?",
				Answer:   top.PersonName,
				Hint:     fmt.Sprintf("They visited %d countries", top.CountryCount),
				Category: domain.TriviaTravel,
			},
			domain.TriviaQuestion{
				ID:       "most-traveled-count",
				Question: fmt.Sprintf("How many countries did %s visit?", top.PersonName),
				Answer:   fmt.Sprintf("%d", top.CountryCount),
				Hint:     hint,
				Category: domain.TriviaTravel,
			})
	}
	if len(uniqueCountries) > 0 {
		hint := "Less than 6"
		if len(uniqueCountries) > 5 {
			hint = "More than 5!"
		}
		trivia = append(trivia, domain.TriviaQuestion{
			ID:       "total-unique-countries",
			Question: "How many unique countries did the group visit in total?",
			Answer:   fmt.Sprintf("%d", len(uniqueCountries)),
			Hint:     hint,
			Category: domain.TriviaTravel,
		})
	}

	totalEntries := 0
	for _, s := range in.Stats {
		totalEntries += s.Count
	}
	if totalEntries > 0 {
		hint := "Less than 100"
		if totalEntries > 100 {
			hint = "More than 100!"
		}
		trivia = append(trivia, domain.TriviaQuestion{
			ID:       "total-entries",
			Question: "How many total entries were logged this year?",
			Answer:   fmt.Sprintf("%d", totalEntries),
			Hint:     hint,
			Category: domain.TriviaGeneral,
		})
	}

	for _, metric := range in.Metrics {
		lower := strings.ToLower(metric.Name)
		rows := statsForMetric(in.Stats, metric.Name)
		metricTotal := 0
		for _, r := range rows {
			metricTotal += r.Count
		}
		if metricTotal == 0 {
			continue
		}
		trivia = append(trivia, domain.TriviaQuestion{
			ID:       "total-" + lower,
			Question: fmt.Sprintf("How many times did the group %s in total?", lower),
			Answer:   fmt.Sprintf("%d", metricTotal),
			Category: domain.TriviaMetric,
		})
		if rows[0].Count > 0 {
			trivia = append(trivia, domain.TriviaQuestion{
				ID:       "who-most-" + lower,
				Question: fmt.Sprintf("Who logged the most %s?", lower),
				Answer:   rows[0].PersonName,
				Hint:     fmt.Sprintf("They did it %d times", rows[0].Count),
				Category: domain.TriviaPerson,
			})
		}
	}

	for _, metric := range in.Metrics {
		if champ, ok := topStreak(in.Streaks[metric.ID], func(s domain.StreakData) int { return s.LongestDailyStreak }); ok && champ.LongestDailyStreak > 2 {
			lower := strings.ToLower(metric.Name)
			trivia = append(trivia, domain.TriviaQuestion{
				ID:       "streak-" + lower,
				Question: fmt.Sprintf("What was the longest %s streak in consecutive days?", lower),
				Answer:   fmt.Sprintf("%d days by %s", champ.LongestDailyStreak, champ.PersonName),
				Category: domain.TriviaStreak,
			})
		}
	}

	monthTotals := make(map[string]int)
	monthOrder := make([]string, 0, 12)
	for _, s := range in.MonthlyStats {
		if _, seen := monthTotals[s.Month]; !seen {
			monthOrder = append(monthOrder, s.Month)
		}
		monthTotals[s.Month] += s.Count
	}
	bestMonth, bestMonthCount := "", -1
	for _, m := range monthOrder {
		if monthTotals[m] > bestMonthCount {
			bestMonth, bestMonthCount = m, monthTotals[m]
		}
	}
	if bestMonth != "" {
		trivia = append(trivia, domain.TriviaQuestion{
			ID:       "best-month",
			Question: "Which month had the most total activity?",
			Answer:   monthName(monthNumber(bestMonth)),
			Hint:     fmt.Sprintf("%d total entries that month", bestMonthCount),
			Category: domain.TriviaGeneral,
		})
	}

	if len(in.People) >= 2 {
		totals, _ := personTotals(in.Stats)
		if len(totals) >= 2 {
			trivia = append(trivia, domain.TriviaQuestion{
				ID:       "closest-race",
				Question: fmt.Sprintf("By how many entries did %s beat %s?", totals[0].name, totals[1].name),
				Answer:   fmt.Sprintf("%d", totals[0].total-totals[1].total),
				Category: domain.TriviaGeneral,
			})
		}
	}

	return trivia
}

// statsForMetric filters and sorts rows for one metric, highest count
// first, stable so ties keep storage order.
func statsForMetric(stats []domain.StatRow, metricName string) []domain.StatRow {
	var rows []domain.StatRow
	for _, s := range stats {
		if s.MetricName == metricName {
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

func topStreak(streaks []domain.StreakData, key func(domain.StreakData) int) (domain.StreakData, bool) {
	if len(streaks) == 0 {
		return domain.StreakData{}, false
	}
	best := streaks[0]
	for _, s := range streaks[1:] {
		if key(s) > key(best) {
			best = s
		}
	}
	return best, true
}

func monthNumber(monthKey string) int {
	_, m, ok := splitMonthKey(monthKey)
	if !ok {
		return 0
	}
	return m
}

func monthName(n int) string {
	names := []string{"", "January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	if n < 1 || n > 12 {
		return ""
	}
	return names[n]
}

func firstN(ss []string, n int) []string {
	if len(ss) < n {
		n = len(ss)
	}
	return ss[:n]
}
