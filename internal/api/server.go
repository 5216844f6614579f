// Package api provides the HTTP server for Resolution Recap. All state
// lives in SQLite; handlers fetch rows and hand them to the analytics
// core, so every response reflects the latest writes.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recap-crew/recap/internal/app/analytics"
	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/metrics"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

// Server is the Resolution Recap HTTP API server.
type Server struct {
	db             *sqlite.DB
	engine         *analytics.AchievementEngine
	sessions       *sessionStore
	metricsEnabled bool
	now            func() time.Time
}

// NewServer wires the API to its storage. nowFn may be nil, in which
// case the wall clock is used; tests pin it.
func NewServer(db *sqlite.DB, nowFn func() time.Time) *Server {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Server{
		db:       db,
		engine:   analytics.NewAchievementEngine(db, nowFn),
		sessions: newSessionStore(),
		now:      nowFn,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)
	r.Get("/api/auth/session", s.handleSession)

	// Everything below needs at least a tracker session.
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(domain.RoleTracker))

		r.Route("/api/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/check-duplicate", s.handleCheckDuplicate)
			r.Put("/{id}", s.handleUpdateEntry)
		})

		r.Get("/api/people", s.handleListPeople)
		r.Get("/api/metrics", s.handleListMetrics)
		r.Get("/api/seasons", s.handleListSeasons)
		r.Get("/api/goals", s.handleListGoals)
		r.Get("/api/goals/progress", s.handleGoalProgress)
		r.Get("/api/achievements/catalog", s.handleAchievementCatalog)
		r.Get("/api/levels", s.handleLevels)

		r.Route("/api/stats", func(r chi.Router) {
			r.Get("/", s.handleStats)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/monthly", s.handleMonthlyStats)
			r.Get("/daily", s.handleDailyStats)
			r.Get("/weekly", s.handleWeeklyStats)
			r.Get("/day-of-week", s.handleDayOfWeekStats)
			r.Get("/streaks", s.handleStreaks)
			r.Get("/personal-bests", s.handlePersonalBests)
			r.Get("/consistency", s.handleConsistency)
			r.Get("/cumulative", s.handleCumulative)
			r.Get("/warnings", s.handleStreakWarnings)
			r.Get("/sport/totals", s.handleSportTotals)
			r.Get("/sport/progression", s.handleSportProgression)
		})

		r.Get("/api/person/{id}", s.handlePersonDetail)
		r.Get("/api/recap", s.handleRecap)
		r.Get("/api/teasers", s.handleTeasers)

		r.Route("/api/countries", func(r chi.Router) {
			r.Get("/", s.handleListCountries)
			r.Post("/", s.handleAddCountry)
			r.Delete("/", s.handleRemoveCountry)
		})
	})

	// Admin-only surface: roster management, destructive entry ops,
	// audit, data transfer, PIN rotation.
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(domain.RoleAdmin))

		r.Post("/api/people", s.handleCreatePerson)
		r.Put("/api/people/{id}", s.handleUpdatePerson)
		r.Post("/api/metrics", s.handleCreateMetric)
		r.Put("/api/metrics/{id}", s.handleUpdateMetric)
		r.Post("/api/seasons", s.handleCreateSeason)
		r.Post("/api/seasons/{id}/activate", s.handleActivateSeason)
		r.Put("/api/goals", s.handleSetGoal)
		r.Delete("/api/goals", s.handleDeleteGoal)

		r.Delete("/api/entries/{id}", s.handleDeleteEntry)
		r.Post("/api/entries/bulk-delete", s.handleBulkDelete)
		r.Post("/api/entries/bulk-undelete", s.handleBulkUndelete)
		r.Get("/api/entries/{id}/audit", s.handleEntryAudit)

		r.Get("/api/admin/audit", s.handleAuditLog)
		r.Get("/api/admin/debug", s.handleDebug)
		r.Get("/api/admin/export", s.handleExport)
		r.Post("/api/admin/import", s.handleImport)
		r.Put("/api/admin/pins", s.handleChangePINs)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// activeSeason resolves the current season or writes a 409. Nearly every
// handler is season-scoped, so the nil check lives here once.
func (s *Server) activeSeason(w http.ResponseWriter) (*domain.Season, bool) {
	season, err := s.db.ActiveSeason()
	if err != nil {
		writeError(w, http.StatusConflict, "no active season")
		return nil, false
	}
	return season, true
}

// instrument records request counts and latency per route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
