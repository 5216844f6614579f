package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
)

// ─── People ─────────────────────────────────────────────────────────────────

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	var (
		people []domain.Person
		err    error
	)
	if r.URL.Query().Get("all") == "true" {
		people, err = s.db.AllPeople()
	} else {
		people, err = s.db.ActivePeople()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": people})
}

// namedResourceRequest covers people and metrics, which share a shape.
type namedResourceRequest struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req namedResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	person, err := s.db.CreatePerson(req.Name, req.Emoji)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"person": person})
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req namedResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	err := s.db.UpdatePerson(id, req.Name, active, req.Emoji)
	if errors.Is(err, domain.ErrPersonNotFound) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ─── Metrics ────────────────────────────────────────────────────────────────

func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Metric
		err  error
	)
	if r.URL.Query().Get("all") == "true" {
		list, err = s.db.AllMetrics()
	} else {
		list, err = s.db.ActiveMetrics()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": list})
}

func (s *Server) handleCreateMetric(w http.ResponseWriter, r *http.Request) {
	var req namedResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	metric, err := s.db.CreateMetric(req.Name, req.Emoji)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"metric": metric})
}

func (s *Server) handleUpdateMetric(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req namedResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	err := s.db.UpdateMetric(id, req.Name, active, req.Emoji)
	if errors.Is(err, domain.ErrMetricNotFound) {
		writeError(w, http.StatusNotFound, "metric not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ─── Seasons ────────────────────────────────────────────────────────────────

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.db.AllSeasons()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}

type seasonRequest struct {
	Year int    `json:"year"`
	Name string `json:"name"`
}

func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Year == 0 {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	season, err := s.db.CreateSeason(req.Year, req.Name)
	if errors.Is(err, domain.ErrSeasonExists) {
		writeError(w, http.StatusConflict, "season already exists for that year")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"season": season})
}

func (s *Server) handleActivateSeason(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := s.db.SetActiveSeason(id)
	if errors.Is(err, domain.ErrSeasonNotFound) {
		writeError(w, http.StatusNotFound, "season not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// ─── Goals ──────────────────────────────────────────────────────────────────

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	goals, err := s.db.GoalsForSeason(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	progress, err := s.db.GoalsWithProgress(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

type goalRequest struct {
	PersonID int64 `json:"person_id"`
	MetricID int64 `json:"metric_id"`
	Target   int   `json:"target"`
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonID == 0 || req.MetricID == 0 || req.Target <= 0 {
		writeError(w, http.StatusBadRequest, "person_id, metric_id, and a positive target are required")
		return
	}
	goal, err := s.db.SetGoal(season.ID, req.PersonID, req.MetricID, req.Target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PersonID == 0 || req.MetricID == 0 {
		writeError(w, http.StatusBadRequest, "person_id and metric_id are required")
		return
	}
	if err := s.db.DeleteGoal(season.ID, req.PersonID, req.MetricID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ─── Countries ──────────────────────────────────────────────────────────────

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	visits, err := s.db.CountriesForSeason(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.db.CountriesStats(season.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": visits, "stats": stats})
}

type countryRequest struct {
	PersonID    int64  `json:"person_id"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
}

func (s *Server) handleAddCountry(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	var req countryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonID == 0 || req.CountryCode == "" || req.CountryName == "" {
		writeError(w, http.StatusBadRequest, "person_id, country_code, and country_name are required")
		return
	}
	visit, err := s.db.AddCountryVisit(season.ID, req.PersonID, req.CountryCode, req.CountryName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"visit": visit})
}

func (s *Server) handleRemoveCountry(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	var req countryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PersonID == 0 || req.CountryCode == "" {
		writeError(w, http.StatusBadRequest, "person_id and country_code are required")
		return
	}
	if err := s.db.RemoveCountryVisit(season.ID, req.PersonID, req.CountryCode); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ─── Catalogs ───────────────────────────────────────────────────────────────

func (s *Server) handleAchievementCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"achievements": domain.Achievements()})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"levels": analytics.Levels()})
}

// ─── PINs ───────────────────────────────────────────────────────────────────

type pinRequest struct {
	TrackerPIN string `json:"tracker_pin,omitempty"`
	AdminPIN   string `json:"admin_pin,omitempty"`
}

func (s *Server) handleChangePINs(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TrackerPIN == "" && req.AdminPIN == "" {
		writeError(w, http.StatusBadRequest, "nothing to change")
		return
	}
	if req.TrackerPIN != "" {
		if err := s.db.ChangeTrackerPIN(req.TrackerPIN); err != nil {
			writePINError(w, err)
			return
		}
	}
	if req.AdminPIN != "" {
		if err := s.db.ChangeAdminPIN(req.AdminPIN); err != nil {
			writePINError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func writePINError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPINTooShort):
		writeError(w, http.StatusBadRequest, "PIN must be at least 4 characters")
	case errors.Is(err, domain.ErrPINConflict):
		writeError(w, http.StatusBadRequest, "tracker and admin PINs must differ")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
