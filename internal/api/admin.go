package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

// ─── Debug ──────────────────────────────────────────────────────────────────

// handleDebug reports runtime and storage internals for troubleshooting.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.TableCounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"runtime": map[string]any{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"heap_mb":    mem.HeapAlloc / 1024 / 1024,
		},
		"database": map[string]any{
			"status": dbStatus(s.db.Ping()),
			"tables": counts,
		},
	})
}

func dbStatus(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// ─── Data Transfer ──────────────────────────────────────────────────────────

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.db.ExportAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="recap-export.json"`)
	writeJSON(w, http.StatusOK, data)
}

type importRequest struct {
	Mode string             `json:"mode"` // "merge" or "replace"
	Data *sqlite.ExportData `json:"data"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid import payload")
		return
	}
	summary, err := s.db.ImportAll(req.Data, req.Mode)
	if errors.Is(err, domain.ErrImportMode) {
		writeError(w, http.StatusBadRequest, `mode must be "merge" or "replace"`)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}
