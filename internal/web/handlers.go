package web

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"silicate/internal/alert"
	"silicate/internal/httpx"
	"silicate/internal/models"
)

// ===== Form endpoints =====

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.credentials(w, r)
	if !ok {
		return
	}
	if _, err := s.client.SignUp(r.Context(), creds); err != nil {
		s.fail(w, r, err)
		return
	}
	alert.DisplaySuccess(newFragment(w, http.StatusOK), fmt.Sprintf(
		"Organization <strong>%s</strong> created. You can now <a href=\"/\">log in</a>.",
		html.EscapeString(creds.OrganizationName)))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.credentials(w, r)
	if !ok {
		return
	}
	if _, err := s.client.Login(r.Context(), creds); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Redirect", "/account")
	alert.DisplaySuccess(newFragment(w, http.StatusOK), fmt.Sprintf(
		"Logged in as <strong>%s</strong>.", html.EscapeString(creds.Username)))
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	password := r.PostFormValue("password")
	if password == "" {
		alert.DisplayError(newFragment(w, http.StatusUnprocessableEntity), "A new password is required.")
		return
	}
	if confirm := r.PostFormValue("confirm"); confirm != password {
		alert.DisplayError(newFragment(w, http.StatusUnprocessableEntity), "Passwords do not match.")
		return
	}
	if _, err := s.client.ChangeCurrentUserPassword(r.Context(), password); err != nil {
		s.fail(w, r, err)
		return
	}
	alert.DisplaySuccess(newFragment(w, http.StatusOK), "Password changed.")
}

// ===== Detail fragments =====

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.client.GetCurrentUser(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.detail(w, "user", user)
}

func (s *Server) organization(w http.ResponseWriter, r *http.Request) {
	org, err := s.client.GetOrganization(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.detail(w, "organization", org)
}

func (s *Server) detail(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render fragment", zap.String("fragment", name), zap.Error(err))
		alert.DisplayError(newFragment(w, http.StatusInternalServerError), "Unable to render the response.")
		return
	}
	newFragment(w, http.StatusOK).Replace(template.HTML(buf.String()))
}

// ===== Helpers =====

func (s *Server) credentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	creds := models.Credentials{
		Username:         strings.TrimSpace(r.PostFormValue("username")),
		Password:         r.PostFormValue("password"),
		OrganizationName: strings.TrimSpace(r.PostFormValue("organization_name")),
	}
	if creds.Username == "" || creds.Password == "" || creds.OrganizationName == "" {
		alert.DisplayError(newFragment(w, http.StatusUnprocessableEntity),
			"Username, password and organization are required.")
		return creds, false
	}
	return creds, true
}

// fail renders err as an error alert. Server messages are escaped since
// they come from the network.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var failed *httpx.ErrRequestFailed
	if errors.As(err, &failed) {
		message := failed.Message()
		if message == "" {
			message = failed.Status
		}
		s.logger.Info("api request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", failed.StatusCode),
			zap.String("message", message))
		alert.DisplayError(newFragment(w, http.StatusBadGateway), html.EscapeString(message))
		return
	}
	s.logger.Warn("api request failed", zap.String("path", r.URL.Path), zap.Error(err))
	alert.DisplayError(newFragment(w, http.StatusBadGateway), "Unable to reach the Silicate API.")
}
