package api

import (
	"math/rand"
	"net/http"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/metrics"
)

// ─── Recap & Teasers ────────────────────────────────────────────────────────

// handleRecap computes the year-end reveal: awards plus trivia, built
// fresh from the season's aggregates on every call.
func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}

	in, err := s.recapInputs(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecapsGenerated.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"season": season,
		"awards": analytics.GenerateAwards(in),
		"trivia": analytics.GenerateTrivia(in),
	})
}

func (s *Server) recapInputs(seasonID int64) (analytics.RecapInputs, error) {
	var in analytics.RecapInputs
	var err error

	if in.Stats, err = s.db.SeasonStats(seasonID); err != nil {
		return in, err
	}
	if in.Streaks, err = s.streaksByMetric(seasonID); err != nil {
		return in, err
	}
	if in.MonthlyStats, err = s.db.MonthlyStats(seasonID); err != nil {
		return in, err
	}
	if in.Metrics, err = s.db.ActiveMetrics(); err != nil {
		return in, err
	}
	if in.People, err = s.db.ActivePeople(); err != nil {
		return in, err
	}
	if in.Countries, err = s.db.CountriesStats(seasonID); err != nil {
		return in, err
	}
	return in, nil
}

// handleTeasers builds the spoiler-free teaser feed. The shuffle seed is
// the current day number, so the feed is stable within a day and rotates
// overnight.
func (s *Server) handleTeasers(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}

	stats, err := s.db.SeasonStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	withNames, err := s.db.EntriesForSeason(season.ID, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries := make([]domain.Entry, len(withNames))
	for i, e := range withNames {
		entries[i] = e.Entry
	}
	people, err := s.db.ActivePeople()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	activeMetrics, err := s.db.ActiveMetrics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	today := s.now()
	rng := rand.New(rand.NewSource(int64(today.Year())*1000 + int64(today.YearDay())))
	teasers, summary := analytics.GenerateTeasers(analytics.TeaserInputs{
		Stats:   stats,
		Entries: entries,
		People:  people,
		Metrics: activeMetrics,
		Today:   today,
	}, rng)

	writeJSON(w, http.StatusOK, map[string]any{
		"teasers": teasers,
		"summary": summary,
	})
}
