package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/metrics"
)

// ─── Entry Handlers ─────────────────────────────────────────────────────────

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		entries, err := s.db.RecentEntries(season.ID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}
	if date := q.Get("date"); date != "" {
		entries, err := s.db.EntriesForDate(season.ID, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}

	// Trash view is admin-only; trackers silently get the live list.
	includeDeleted := q.Get("include_deleted") == "true" && sessionRole(r) == domain.RoleAdmin
	entries, err := s.db.EntriesForSeason(season.ID, includeDeleted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type createEntryRequest struct {
	PersonID  int64  `json:"person_id"`
	MetricID  int64  `json:"metric_id"`
	EntryDate string `json:"entry_date"`
	Notes     string `json:"notes,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Force     bool   `json:"force,omitempty"` // log anyway on duplicate
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonID == 0 || req.MetricID == 0 || req.EntryDate == "" {
		writeError(w, http.StatusBadRequest, "person_id, metric_id, and entry_date are required")
		return
	}

	if !req.Force {
		existing, err := s.db.CheckDuplicate(season.ID, req.PersonID, req.MetricID, req.EntryDate)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if existing != nil {
			writeJSON(w, http.StatusConflict, map[string]any{
				"duplicate": existing,
				"error":     map[string]any{"message": "entry already exists for that day", "type": "duplicate"},
			})
			return
		}
	}

	entry, err := s.db.CreateEntry(season.ID, req.PersonID, req.MetricID, req.EntryDate, req.Notes, req.Tags, sessionRole(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m, err := s.db.AllMetrics(); err == nil {
		for _, metric := range m {
			if metric.ID == req.MetricID {
				metrics.EntriesCreated.WithLabelValues(metric.Name).Inc()
			}
		}
	}

	// Every write is an achievement opportunity.
	unlocked, err := s.engine.CheckAndUnlock(season.ID, req.PersonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, key := range unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(key).Inc()
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":            entry,
		"new_achievements": achievementDefs(unlocked),
	})
}

func (s *Server) handleCheckDuplicate(w http.ResponseWriter, r *http.Request) {
	season, ok := s.activeSeason(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	personID, _ := strconv.ParseInt(q.Get("person_id"), 10, 64)
	metricID, _ := strconv.ParseInt(q.Get("metric_id"), 10, 64)
	date := q.Get("entry_date")
	if personID == 0 || metricID == 0 || date == "" {
		writeError(w, http.StatusBadRequest, "person_id, metric_id, and entry_date are required")
		return
	}

	existing, err := s.db.CheckDuplicate(season.ID, personID, metricID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"duplicate": existing != nil,
		"entry":     existing,
	})
}

type updateEntryRequest struct {
	PersonID  int64  `json:"person_id"`
	MetricID  int64  `json:"metric_id"`
	EntryDate string `json:"entry_date"`
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := s.db.UpdateEntry(id, req.PersonID, req.MetricID, req.EntryDate, sessionRole(r))
	if errors.Is(err, domain.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := s.db.SoftDeleteEntry(id, sessionRole(r))
	if errors.Is(err, domain.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.EntriesDeleted.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkEntryRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := s.db.SoftDeleteEntries(req.IDs, sessionRole(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.EntriesDeleted.Add(float64(len(req.IDs)))
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "count": len(req.IDs)})
}

func (s *Server) handleBulkUndelete(w http.ResponseWriter, r *http.Request) {
	var req bulkEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := s.db.UndeleteEntries(req.IDs, sessionRole(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "restored", "count": len(req.IDs)})
}

func (s *Server) handleEntryAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	audits, err := s.db.EntryAuditLog(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit": audits})
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	audits, err := s.db.AllAuditLogs(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit": audits})
}

// pathID parses the {id} route parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// achievementDefs expands unlock keys to full catalog entries.
func achievementDefs(keys []string) []domain.AchievementDef {
	defs := make([]domain.AchievementDef, 0, len(keys))
	for _, key := range keys {
		if def, ok := domain.AchievementByKey(key); ok {
			defs = append(defs, def)
		}
	}
	return defs
}
