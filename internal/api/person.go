package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
)

// ─── Person Detail ──────────────────────────────────────────────────────────

// metricComparison holds one metric's person-vs-group numbers.
type metricComparison struct {
	MetricID     int64   `json:"metric_id"`
	MetricName   string  `json:"metric_name"`
	PersonCount  int     `json:"person_count"`
	GroupAverage float64 `json:"group_average"`
}

// handlePersonDetail assembles the full profile page: entries, goals,
// per-metric streaks, the calendar heatmap, group comparisons, unlocked
// achievements, and the XP/level snapshot. Achievements are re-checked
// first so the page never shows stale unlocks.
func (s *Server) handlePersonDetail(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	person, err := s.db.Person(id)
	if errors.Is(err, domain.ErrPersonNotFound) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := s.engine.CheckAndUnlock(season.ID, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, err := s.db.PersonEntries(season.ID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := s.db.EntriesForPersonLimited(season.ID, id, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	goals, err := s.personGoalProgress(season.ID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlocked, err := s.db.PersonAchievements(season.ID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	allStreaks, err := s.streaksByMetric(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.db.SeasonStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	streaks := make(map[int64]domain.StreakData, len(allStreaks))
	for metricID, rows := range allStreaks {
		for _, row := range rows {
			if row.PersonID == id {
				streaks[metricID] = row
			}
		}
	}

	calendar := make(map[string]int)
	for _, e := range entries {
		calendar[e.EntryDate]++
	}

	playerStats := analytics.PlayerStatsFor(xpInputsFor(entries, streaks, goals, unlocked))

	writeJSON(w, http.StatusOK, map[string]any{
		"person":         person,
		"entries":        recent,
		"goals":          goals,
		"streaks":        streaks,
		"calendar":       calendar,
		"comparisons":    comparisons(stats, id),
		"achievements":   unlocked,
		"catalog":        domain.Achievements(),
		"player_stats":   playerStats,
		"entries_logged": len(entries),
	})
}

// personGoalProgress narrows the season's goal progress to one person.
func (s *Server) personGoalProgress(seasonID, personID int64) ([]domain.GoalProgress, error) {
	all, err := s.db.GoalsWithProgress(seasonID)
	if err != nil {
		return nil, err
	}
	var mine []domain.GoalProgress
	for _, gp := range all {
		if gp.PersonID == personID {
			mine = append(mine, gp)
		}
	}
	return mine, nil
}

// xpInputsFor folds the person's raw facts into the XP formula's inputs.
func xpInputsFor(entries []domain.Entry, streaks map[int64]domain.StreakData, goals []domain.GoalProgress, unlocked []domain.UnlockedAchievement) analytics.XPInputs {
	in := analytics.XPInputs{TotalEntries: len(entries)}

	for _, st := range streaks {
		if st.LongestDailyStreak > in.LongestStreak {
			in.LongestStreak = st.LongestDailyStreak
		}
		if st.CurrentDailyStreak > in.CurrentStreak {
			in.CurrentStreak = st.CurrentDailyStreak
		}
	}

	for _, u := range unlocked {
		if def, ok := domain.AchievementByKey(u.Key); ok {
			in.Unlocked = append(in.Unlocked, def)
		}
	}

	for _, gp := range goals {
		if gp.Target <= 0 {
			continue
		}
		if gp.Current >= gp.Target {
			in.GoalsReached++
		}
		if gp.Current > gp.Target {
			in.GoalsExceeded++
		}
	}

	metricSet := make(map[int64]bool)
	weekSet := make(map[string]bool)
	for _, e := range entries {
		metricSet[e.MetricID] = true
		weekSet[analytics.WeekKey(analytics.ParseDate(e.EntryDate))] = true
	}
	in.UniqueMetrics = len(metricSet)
	in.ActiveWeeks = len(weekSet)
	return in
}

// comparisons computes the person's count against the group average for
// every metric in the zero-filled stat grid.
func comparisons(stats []domain.StatRow, personID int64) []metricComparison {
	type agg struct {
		name   string
		total  int
		people int
		mine   int
	}
	var order []int64
	byMetric := make(map[int64]*agg)
	for _, row := range stats {
		a, seen := byMetric[row.MetricID]
		if !seen {
			a = &agg{name: row.MetricName}
			byMetric[row.MetricID] = a
			order = append(order, row.MetricID)
		}
		a.total += row.Count
		a.people++
		if row.PersonID == personID {
			a.mine = row.Count
		}
	}

	comps := make([]metricComparison, 0, len(order))
	for _, metricID := range order {
		a := byMetric[metricID]
		avg := 0.0
		if a.people > 0 {
			avg = math.Round(float64(a.total)/float64(a.people)*10) / 10
		}
		comps = append(comps, metricComparison{
			MetricID:     metricID,
			MetricName:   a.name,
			PersonCount:  a.mine,
			GroupAverage: avg,
		})
	}
	return comps
}
