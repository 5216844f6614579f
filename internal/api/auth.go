package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/metrics"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

const sessionCookie = "recap_session"

type ctxKey int

const roleKey ctxKey = iota

// sessionStore maps opaque session tokens to roles. In-memory by design:
// a restart logs everyone out, and re-entering a PIN is cheap.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Role
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]domain.Role)}
}

func (st *sessionStore) create(role domain.Role) string {
	token := uuid.NewString()
	st.mu.Lock()
	st.sessions[token] = role
	st.mu.Unlock()
	metrics.SessionsActive.Inc()
	return token
}

func (st *sessionStore) lookup(token string) (domain.Role, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	role, ok := st.sessions[token]
	return role, ok
}

func (st *sessionStore) destroy(token string) {
	st.mu.Lock()
	if _, ok := st.sessions[token]; ok {
		delete(st.sessions, token)
		metrics.SessionsActive.Dec()
	}
	st.mu.Unlock()
}

// ─── Handlers ───────────────────────────────────────────────────────────────

type loginRequest struct {
	PIN string `json:"pin"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := s.db.ValidatePIN(req.PIN)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPIN) {
			metrics.AuthFailures.Inc()
			writeError(w, http.StatusUnauthorized, "invalid PIN")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token := s.sessions.create(role)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"role": role})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.destroy(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requestRole(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "role": role})
}

// ─── Middleware ─────────────────────────────────────────────────────────────

func (s *Server) requestRole(r *http.Request) (domain.Role, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	return s.sessions.lookup(c.Value)
}

// requireRole gates a route group on a minimum role. Admin sessions pass
// tracker checks; the reverse does not hold.
func (s *Server) requireRole(min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := s.requestRole(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not logged in")
				return
			}
			if min == domain.RoleAdmin && role != domain.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleKey, role)))
		})
	}
}

// sessionRole returns the role the middleware stored on the context.
func sessionRole(r *http.Request) domain.Role {
	if role, ok := r.Context().Value(roleKey).(domain.Role); ok {
		return role
	}
	return domain.RoleTracker
}
