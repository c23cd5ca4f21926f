// Package apitest runs an in-process fake of the Silicate API for tests.
// It follows the real server's conventions: JSON bodies, bearer tokens, and
// every failure reported as HTTP 500 with {"success": false, "message": ...}.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Request is what the fake saw for one incoming request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          string
}

type user struct {
	ID             string
	Username       string
	Password       string
	OrganizationID string
	Admin          bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type organization struct {
	ID        string
	Name      string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type project struct {
	ID             string
	Name           string
	CreatorID      string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type projectAccess struct {
	ProjectID   string
	UserID      string
	Permissions []string
}

// Server is the fake API. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	users    []*user
	orgs     []*organization
	projects []*project
	access   []*projectAccess
	tokens   map[string]string
	nextID   int

	// unhealthy counts how many /health calls still fail.
	unhealthy int
}

// NewServer starts a fake API. Close it when done.
func NewServer() *Server {
	s := &Server{tokens: make(map[string]string)}
	s.Server = httptest.NewServer(s.router())
	return s
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// FailHealth makes the next n /health calls answer 503.
func (s *Server) FailHealth(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhealthy = n
}

// SeedUser signs up username in organization and returns a valid token for
// it, bypassing HTTP.
func (s *Server) SeedUser(username, password, organizationName string) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.signUpLocked(username, password, organizationName)
	if err != nil {
		panic(err)
	}
	return s.issueTokenLocked(u)
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/api/v1/users/signup", s.signUp).Methods("POST")
	r.HandleFunc("/api/v1/users/token", s.token).Methods("POST")
	r.HandleFunc("/api/v1/users/me", s.authenticated(s.me)).Methods("GET")
	r.HandleFunc("/api/v1/users/me/password", s.authenticated(s.changePassword)).Methods("PUT")
	r.HandleFunc("/api/v1/users", s.authenticated(s.addUser)).Methods("POST")
	r.HandleFunc("/api/v1/users", s.authenticated(s.fetchUsers)).Methods("GET")
	r.HandleFunc("/api/v1/users/{id}", s.authenticated(s.getUser)).Methods("GET")
	r.HandleFunc("/api/v1/users/{id}/password", s.authenticated(s.resetPassword)).Methods("PUT")
	r.HandleFunc("/api/v1/users/{id}/admin", s.authenticated(s.changeAdmin)).Methods("PUT")
	r.HandleFunc("/api/v1/users/{id}", s.authenticated(s.deleteUser)).Methods("DELETE")
	r.HandleFunc("/api/v1/organization", s.authenticated(s.organization)).Methods("GET")
	r.HandleFunc("/api/v1/projects", s.authenticated(s.createProject)).Methods("POST")
	r.HandleFunc("/api/v1/projects", s.authenticated(s.fetchProjects)).Methods("GET")
	r.HandleFunc("/api/v1/projects/{id}", s.authenticated(s.getProject)).Methods("GET")
	r.HandleFunc("/api/v1/projects/{id}", s.authenticated(s.updateProject)).Methods("PUT")
	r.HandleFunc("/api/v1/projects/{id}", s.authenticated(s.deleteProject)).Methods("DELETE")
	r.HandleFunc("/api/v1/projects/{id}/users", s.authenticated(s.fetchProjectUsers)).Methods("GET")
	r.HandleFunc("/api/v1/projects/{id}/users/{user_id}/access", s.authenticated(s.addAccess)).Methods("POST")
	r.HandleFunc("/api/v1/projects/{id}/users/{user_id}/access", s.authenticated(s.deleteAccess)).Methods("DELETE")
	r.HandleFunc("/api/v1/projects/{id}/users/{user_id}", s.authenticated(s.deleteAllAccess)).Methods("DELETE")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "404 Not Found: The requested URL was not found on the server.",
		})
	})
	return r
}

// ===== Plumbing =====

type body map[string]any

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(raw),
		})
		s.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(raw)))
		next.ServeHTTP(w, r)
	})
}

func readBody(r *http.Request) body {
	var b body
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		return nil
	}
	return b
}

func requiredString(b body, key string) (string, error) {
	if b == nil {
		return "", errors.New("Request body is missing")
	}
	v, ok := b[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("Invalid data type for value of %s", key)
	}
	return s, nil
}

func requiredBool(b body, key string) (bool, error) {
	if b == nil {
		return false, errors.New("Request body is missing")
	}
	v, ok := b[key]
	if !ok {
		return false, fmt.Errorf("%s is required", key)
	}
	flag, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("Invalid data type for value of %s", key)
	}
	return flag, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": err.Error(),
	})
}

func httpTime(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

func (u *user) dict() map[string]any {
	return map[string]any{
		"id":              u.ID,
		"username":        u.Username,
		"organization_id": u.OrganizationID,
		"admin":           u.Admin,
		"created_at":      httpTime(u.CreatedAt),
		"updated_at":      httpTime(u.UpdatedAt),
	}
}

func (p *project) dict() map[string]any {
	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"creator_id":      p.CreatorID,
		"organization_id": p.OrganizationID,
		"created_at":      httpTime(p.CreatedAt),
		"updated_at":      httpTime(p.UpdatedAt),
	}
}

func (o *organization) dict() map[string]any {
	return map[string]any{
		"id":         o.ID,
		"name":       o.Name,
		"creator_id": o.CreatorID,
		"created_at": httpTime(o.CreatedAt),
		"updated_at": httpTime(o.UpdatedAt),
	}
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return prefix + strconv.Itoa(s.nextID)
}

type currentUser func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) authenticated(next currentUser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		s.mu.Lock()
		u := s.userByTokenLocked(token)
		s.mu.Unlock()
		if u == nil {
			fail(w, errors.New("Invalid access token"))
			return
		}
		next(w, r, u)
	}
}

func (s *Server) userByTokenLocked(token string) *user {
	id, ok := s.tokens[token]
	if !ok {
		return nil
	}
	return s.userByIDLocked(id)
}

func (s *Server) userByIDLocked(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) orgByNameLocked(name string) *organization {
	for _, o := range s.orgs {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func (s *Server) orgByIDLocked(id string) *organization {
	for _, o := range s.orgs {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *Server) issueTokenLocked(u *user) string {
	token := s.newIDLocked("tok-")
	s.tokens[token] = u.ID
	return token
}

func (s *Server) signUpLocked(username, password, organizationName string) (*user, error) {
	if s.orgByNameLocked(organizationName) != nil {
		return nil, fmt.Errorf("Organization %s already exists", organizationName)
	}
	now := time.Now()
	u := &user{
		ID:        s.newIDLocked("u"),
		Username:  username,
		Password:  password,
		Admin:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o := &organization{
		ID:        s.newIDLocked("o"),
		Name:      organizationName,
		CreatorID: u.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.OrganizationID = o.ID
	s.users = append(s.users, u)
	s.orgs = append(s.orgs, o)
	return u, nil
}

// pageParams reads page and size like the API does: page counts from 0,
// size defaults to 50.
func pageParams(r *http.Request) (page, size int) {
	page, size = 0, 50
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	out := []T{}
	for i := page * size; i < len(items) && i < (page+1)*size; i++ {
		out = append(out, items[i])
	}
	return out
}

func checkAdmin(u *user) error {
	if !u.Admin {
		return errors.New("Not allowed")
	}
	return nil
}
