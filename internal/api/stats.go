package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
)

// ─── Stats Handlers ─────────────────────────────────────────────────────────

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "all"
	}
	stats, err := s.db.SeasonStatsFiltered(season.ID, period, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "period": period})
}

// leaderboardRow is a person's season total plus their competition rank.
type leaderboardRow struct {
	PersonID    int64  `json:"person_id"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	Total       int    `json:"total"`
	Rank        int    `json:"rank"`
	RankDisplay string `json:"rank_display"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	stats, err := s.db.SeasonStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows := leaderboardRows(stats)
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

// leaderboardRows folds the zero-filled stat grid into per-person totals
// and ranks them. Ties share a rank; the next rank skips accordingly.
func leaderboardRows(stats []domain.StatRow) []leaderboardRow {
	var order []int64
	totals := make(map[int64]*leaderboardRow)
	for _, row := range stats {
		lr, seen := totals[row.PersonID]
		if !seen {
			lr = &leaderboardRow{PersonID: row.PersonID, PersonName: row.PersonName, PersonEmoji: row.PersonEmoji}
			totals[row.PersonID] = lr
			order = append(order, row.PersonID)
		}
		lr.Total += row.Count
	}

	rows := make([]leaderboardRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *totals[id])
	}
	// Name order in, total order out. Stable so ties stay alphabetical.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

	scores := make([]int, len(rows))
	for i, row := range rows {
		scores[i] = row.Total
	}
	ranks := analytics.Ranks(scores)
	for i := range rows {
		rows[i].Rank = ranks[i]
		rows[i].RankDisplay = analytics.RankDisplay(ranks[i])
	}
	return rows
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	stats, err := s.db.MonthlyStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"monthly": stats})
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	stats, err := s.db.DailyStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily": stats})
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	stats, err := s.db.WeeklyStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekly": stats})
}

func (s *Server) handleDayOfWeekStats(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	stats, err := s.db.DayOfWeekStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": stats})
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}

	// With ?metric_id one metric's board comes back flat; without it,
	// every active metric keyed by ID.
	if raw := r.URL.Query().Get("metric_id"); raw != "" {
		metricID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || metricID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid metric_id")
			return
		}
		streaks, err := s.db.StreaksForMetric(season.ID, metricID, s.now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"streaks": streaks})
		return
	}

	all, err := s.streaksByMetric(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"streaks": all})
}

// streaksByMetric computes streak boards for every active metric.
func (s *Server) streaksByMetric(seasonID int64) (map[int64][]domain.StreakData, error) {
	metricList, err := s.db.ActiveMetrics()
	if err != nil {
		return nil, err
	}
	all := make(map[int64][]domain.StreakData, len(metricList))
	for _, m := range metricList {
		streaks, err := s.db.StreaksForMetric(seasonID, m.ID, s.now())
		if err != nil {
			return nil, err
		}
		all[m.ID] = streaks
	}
	return all, nil
}

func (s *Server) handlePersonalBests(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	bests, err := s.db.PersonalBests(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"personal_bests": bests})
}

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	scores, err := s.db.ConsistencyScores(season.ID, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"consistency": scores})
}

func (s *Server) handleCumulative(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	points, err := s.db.CumulativeStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cumulative": points})
}

func (s *Server) handleStreakWarnings(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	warnings, err := s.db.StreakWarnings(season.ID, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

func (s *Server) handleSportTotals(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	totals, err := s.db.SportTotals(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totals": totals})
}

func (s *Server) handleSportProgression(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	rows, err := s.db.SportProgression(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progression": rows})
}
