package apitest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// ===== Public endpoints =====

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	down := s.unhealthy > 0
	if down {
		s.unhealthy--
	}
	s.mu.Unlock()
	if down {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	b := readBody(r)
	username, err := requiredString(b, "username")
	if err != nil {
		fail(w, err)
		return
	}
	password, err := requiredString(b, "password")
	if err != nil {
		fail(w, err)
		return
	}
	orgName, err := requiredString(b, "organization_name")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	u, err := s.signUpLocked(username, password, orgName)
	s.mu.Unlock()
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":              u.ID,
		"organization_id": u.OrganizationID,
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	b := readBody(r)
	username, err := requiredString(b, "username")
	if err != nil {
		fail(w, err)
		return
	}
	password, err := requiredString(b, "password")
	if err != nil {
		fail(w, err)
		return
	}
	orgName, err := requiredString(b, "organization_name")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.orgByNameLocked(orgName)
	if org == nil {
		fail(w, fmt.Errorf("Organization %s not found", orgName))
		return
	}
	for _, u := range s.users {
		if u.OrganizationID == org.ID && u.Username == username && u.Password == password {
			writeJSON(w, http.StatusOK, map[string]any{"token": s.issueTokenLocked(u)})
			return
		}
	}
	fail(w, errors.New("Invalid username and password combination"))
}

// ===== Current user =====

func (s *Server) me(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, u.dict())
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, u *user) {
	password, err := requiredString(readBody(r), "password")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	u.Password = password
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID})
}

func (s *Server) organization(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.orgByIDLocked(u.OrganizationID)
	if org == nil {
		fail(w, errors.New("Organization not found"))
		return
	}
	writeJSON(w, http.StatusOK, org.dict())
}

// ===== Organization administration =====

func (s *Server) addUser(w http.ResponseWriter, r *http.Request, admin *user) {
	if err := checkAdmin(admin); err != nil {
		fail(w, err)
		return
	}
	b := readBody(r)
	username, err := requiredString(b, "username")
	if err != nil {
		fail(w, err)
		return
	}
	isAdmin, err := requiredBool(b, "admin")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OrganizationID == admin.OrganizationID && u.Username == username {
			fail(w, fmt.Errorf("User %s already exists", username))
			return
		}
	}
	u := &user{
		ID:             s.newIDLocked("u"),
		Username:       username,
		OrganizationID: admin.OrganizationID,
		Admin:          isAdmin,
		CreatedAt:      admin.CreatedAt,
		UpdatedAt:      admin.UpdatedAt,
	}
	u.Password = "generated-" + u.ID
	s.users = append(s.users, u)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "password": u.Password})
}

func (s *Server) fetchUsers(w http.ResponseWriter, r *http.Request, caller *user) {
	page, size := pageParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []map[string]any
	for _, u := range s.users {
		if u.OrganizationID == caller.OrganizationID {
			members = append(members, u.dict())
		}
	}
	writeJSON(w, http.StatusOK, paginate(members, page, size))
}

// memberLocked resolves {id} within the caller's organization.
func (s *Server) memberLocked(r *http.Request, caller *user) (*user, error) {
	u := s.userByIDLocked(mux.Vars(r)["id"])
	if u == nil || u.OrganizationID != caller.OrganizationID {
		return nil, errors.New("User not found")
	}
	return u, nil
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, caller *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.memberLocked(r, caller)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.dict())
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request, admin *user) {
	if err := checkAdmin(admin); err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.memberLocked(r, admin)
	if err != nil {
		fail(w, err)
		return
	}
	u.Password = s.newIDLocked("reset-")
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "password": u.Password})
}

func (s *Server) changeAdmin(w http.ResponseWriter, r *http.Request, admin *user) {
	if err := checkAdmin(admin); err != nil {
		fail(w, err)
		return
	}
	isAdmin, err := requiredBool(readBody(r), "admin")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.memberLocked(r, admin)
	if err != nil {
		fail(w, err)
		return
	}
	u.Admin = isAdmin
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, admin *user) {
	if err := checkAdmin(admin); err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.memberLocked(r, admin)
	if err != nil {
		fail(w, err)
		return
	}
	kept := s.users[:0]
	for _, other := range s.users {
		if other != u {
			kept = append(kept, other)
		}
	}
	s.users = kept
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID})
}
