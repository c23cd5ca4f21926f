// Package web serves the local Silicate GUI: the index, join and account
// pages plus small form endpoints answering with alert fragments.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"silicate/internal/apiclient"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server is the GUI backend. It forwards every form to the API client.
type Server struct {
	client    *apiclient.Client
	logger    *zap.Logger
	templates *template.Template
}

// New creates a Server. A nil logger discards.
func New(client *apiclient.Client, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Server{client: client, logger: logger, templates: tmpl}, nil
}

// Handler returns the router with logging and recovery installed.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/", s.page("index.html")).Methods("GET")
	r.HandleFunc("/join", s.page("join.html")).Methods("GET")
	r.HandleFunc("/account", s.page("account.html")).Methods("GET")

	static, _ := fs.Sub(staticFS, "static")
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))).Methods("GET")

	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("/signup", s.signUp).Methods("POST")
	ui.HandleFunc("/login", s.login).Methods("POST")
	ui.HandleFunc("/password", s.changePassword).Methods("POST")
	ui.HandleFunc("/me", s.currentUser).Methods("GET")
	ui.HandleFunc("/organization", s.organization).Methods("GET")
	return r
}

type pageData struct {
	Title  string
	Server string
}

var titles = map[string]string{
	"index.html":   "Log in",
	"join.html":    "Join",
	"account.html": "Account",
}

func (s *Server) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := pageData{Title: titles[name], Server: s.client.BaseURL()}
		if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
			s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		}
	}
}
