// Package controllertest provides an in-memory controller API for tests.
package controllertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const authCookie = "AUTH_TOKEN"

// Fixture describes the tenant the fake controller serves.
type Fixture struct {
	Token      string
	Email      string
	Password   string
	TenantID   string
	TenantName string

	// Sites is served by the site listing in order.
	Sites []map[string]any
	// Collections maps a collection name to its items.
	Collections map[string][]map[string]any
	// FailStatus forces a status for "login", "profile", "tenant",
	// "sites", "logout" or a collection name.
	FailStatus map[string]int
}

// Server is a running fake controller.
type Server struct {
	*httptest.Server

	fixture *Fixture

	mu            sync.Mutex
	loginAttempts int
	logoutCalls   int
	requestIDs    []string
}

// Item builds a listing item with an id and a name.
func Item(id, name string) map[string]any {
	return map[string]any{"id": id, "name": name}
}

// NewServer starts a fake controller that is closed with the test.
func NewServer(t testing.TB, f *Fixture) *Server {
	t.Helper()

	s := &Server{fixture: f}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2.0/api/login", s.handleLogin)
	mux.HandleFunc("GET /v2.0/api/logout", s.authorized("logout", s.handleLogout))
	mux.HandleFunc("GET /v2.1/api/profile", s.authorized("profile", s.handleProfile))
	mux.HandleFunc("GET /v2.4/api/tenants/{tid}", s.authorized("tenant", s.handleTenant))
	mux.HandleFunc("GET /v4.7/api/tenants/{tid}/sites", s.authorized("sites", s.handleSites))
	mux.HandleFunc("GET /{ver}/api/tenants/{tid}/{collection}", s.authorized("", s.handleCollection))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// LoginAttempts returns how many login requests were received.
func (s *Server) LoginAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginAttempts
}

// LogoutCalls returns how many logout requests were received.
func (s *Server) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

// RequestIDs returns the X-Request-ID values seen so far.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	s.loginAttempts++
	s.mu.Unlock()

	if status, ok := s.fixture.FailStatus["login"]; ok {
		writeJSON(w, status, map[string]any{"error": "forced failure"})
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad body"})
		return
	}
	if body.Email != s.fixture.Email || body.Password != s.fixture.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}

	http.SetCookie(w, &http.Cookie{Name: authCookie, Value: s.fixture.Token, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"api_endpoint": ""})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.logoutCalls++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": s.fixture.TenantID,
		"email":     s.fixture.Email,
	})
}

func (s *Server) handleTenant(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("tid") != s.fixture.TenantID {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown tenant"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":   s.fixture.TenantID,
		"name": s.fixture.TenantName,
	})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("tid") != s.fixture.TenantID {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown tenant"})
		return
	}
	items := s.fixture.Sites
	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	if status, ok := s.fixture.FailStatus[name]; ok {
		writeJSON(w, status, map[string]any{"error": "forced failure"})
		return
	}
	items, ok := s.fixture.Collections[name]
	if !ok {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) authorized(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.record(r)

		if status, ok := s.fixture.FailStatus[operation]; ok && operation != "" {
			writeJSON(w, status, map[string]any{"error": "forced failure"})
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			if cookie, err := r.Cookie(authCookie); err == nil {
				token = cookie.Value
			}
		}
		if token == "" || token != s.fixture.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "not authenticated"})
			return
		}
		next(w, r)
	}
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
