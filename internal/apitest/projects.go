package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
)

const permissionAll = "all"

func requiredList(b body, key string) ([]string, error) {
	if b == nil {
		return nil, errors.New("Request body is missing")
	}
	v, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("Invalid data type for value of %s", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("Invalid data type for value of %s", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// optionalString returns "" when key is absent.
func optionalString(b body, key string) (string, error) {
	v, ok := b[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("Invalid data type for value of %s", key)
	}
	return s, nil
}

// ===== Lookups (callers hold s.mu) =====

func (s *Server) projectByIDLocked(id string) *project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) accessLocked(projectID, userID string) *projectAccess {
	for _, a := range s.access {
		if a.ProjectID == projectID && a.UserID == userID {
			return a
		}
	}
	return nil
}

func (s *Server) hasAccessLocked(projectID, userID, permission string) bool {
	a := s.accessLocked(projectID, userID)
	return a != nil && (slices.Contains(a.Permissions, permission) || slices.Contains(a.Permissions, permissionAll))
}

func (s *Server) hasAnyAccessLocked(projectID, userID string) bool {
	a := s.accessLocked(projectID, userID)
	return a != nil && len(a.Permissions) > 0
}

func (s *Server) grantLocked(projectID, userID string, permissions []string) {
	a := s.accessLocked(projectID, userID)
	if a == nil {
		a = &projectAccess{ProjectID: projectID, UserID: userID, Permissions: []string{}}
		s.access = append(s.access, a)
	}
	for _, p := range permissions {
		if !slices.Contains(a.Permissions, p) {
			a.Permissions = append(a.Permissions, p)
		}
	}
}

func (s *Server) dropAccessLocked(keep func(*projectAccess) bool) {
	kept := s.access[:0]
	for _, a := range s.access {
		if keep(a) {
			kept = append(kept, a)
		}
	}
	s.access = kept
}

func (s *Server) projectNameTakenLocked(name, organizationID, except string) bool {
	for _, p := range s.projects {
		if p.Name == name && p.OrganizationID == organizationID && p.ID != except {
			return true
		}
	}
	return false
}

// ===== Projects =====

func (s *Server) createProject(w http.ResponseWriter, r *http.Request, caller *user) {
	if err := checkAdmin(caller); err != nil {
		fail(w, err)
		return
	}
	name, err := requiredString(readBody(r), "name")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectNameTakenLocked(name, caller.OrganizationID, "") {
		fail(w, fmt.Errorf("Project %s already exists", name))
		return
	}
	now := time.Now()
	p := &project{
		ID:             s.newIDLocked("p"),
		Name:           name,
		CreatorID:      caller.ID,
		OrganizationID: caller.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.projects = append(s.projects, p)
	s.grantLocked(p.ID, caller.ID, []string{permissionAll})
	writeJSON(w, http.StatusOK, map[string]any{"id": p.ID})
}

func (s *Server) fetchProjects(w http.ResponseWriter, r *http.Request, caller *user) {
	page, size := pageParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []map[string]any
	for _, a := range s.access {
		if a.UserID != caller.ID {
			continue
		}
		if p := s.projectByIDLocked(a.ProjectID); p != nil {
			entries = append(entries, map[string]any{
				"permissions": a.Permissions,
				"project":     p.dict(),
			})
		}
	}
	writeJSON(w, http.StatusOK, paginate(entries, page, size))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request, caller *user) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.projectByIDLocked(id)
	if p == nil || !s.hasAnyAccessLocked(id, caller.ID) {
		fail(w, errors.New("Project not found"))
		return
	}
	writeJSON(w, http.StatusOK, p.dict())
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request, caller *user) {
	id := mux.Vars(r)["id"]
	name, err := optionalString(readBody(r), "name")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAccessLocked(id, caller.ID, permissionAll) {
		fail(w, errors.New("Not allowed"))
		return
	}
	p := s.projectByIDLocked(id)
	if p == nil {
		fail(w, errors.New("Project not found"))
		return
	}
	if name != "" {
		if s.projectNameTakenLocked(name, caller.OrganizationID, id) {
			fail(w, fmt.Errorf("Project %s already exists", name))
			return
		}
		p.Name = name
	}
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request, caller *user) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAccessLocked(id, caller.ID, permissionAll) {
		fail(w, errors.New("Not allowed"))
		return
	}
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	s.dropAccessLocked(func(a *projectAccess) bool { return a.ProjectID != id })
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

// ===== Project access =====

func (s *Server) addAccess(w http.ResponseWriter, r *http.Request, caller *user) {
	vars := mux.Vars(r)
	permissions, err := requiredList(readBody(r), "permissions")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAccessLocked(vars["id"], caller.ID, permissionAll) {
		fail(w, errors.New("Not allowed"))
		return
	}
	member := s.userByIDLocked(vars["user_id"])
	if member == nil || member.OrganizationID != caller.OrganizationID {
		fail(w, errors.New("User not found"))
		return
	}
	s.grantLocked(vars["id"], member.ID, permissions)
	writeJSON(w, http.StatusOK, map[string]any{
		"project_id":  vars["id"],
		"user":        member.dict(),
		"permissions": permissions,
	})
}

func (s *Server) deleteAccess(w http.ResponseWriter, r *http.Request, caller *user) {
	vars := mux.Vars(r)
	permissions, err := requiredList(readBody(r), "permissions")
	if err != nil {
		fail(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAccessLocked(vars["id"], caller.ID, permissionAll) {
		fail(w, errors.New("Not allowed"))
		return
	}
	a := s.accessLocked(vars["id"], vars["user_id"])
	if a == nil {
		fail(w, errors.New("Project access not found"))
		return
	}
	a.Permissions = slices.DeleteFunc(a.Permissions, func(p string) bool {
		return slices.Contains(permissions, p)
	})
	writeJSON(w, http.StatusOK, map[string]any{"project_id": vars["id"], "user_id": vars["user_id"]})
}

func (s *Server) deleteAllAccess(w http.ResponseWriter, r *http.Request, caller *user) {
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAccessLocked(vars["id"], caller.ID, permissionAll) {
		fail(w, errors.New("Not allowed"))
		return
	}
	if s.accessLocked(vars["id"], vars["user_id"]) == nil {
		fail(w, errors.New("Project access not found"))
		return
	}
	s.dropAccessLocked(func(a *projectAccess) bool {
		return a.ProjectID != vars["id"] || a.UserID != vars["user_id"]
	})
	writeJSON(w, http.StatusOK, map[string]any{"project_id": vars["id"], "user_id": vars["user_id"]})
}

func (s *Server) fetchProjectUsers(w http.ResponseWriter, r *http.Request, caller *user) {
	id := mux.Vars(r)["id"]
	page, size := pageParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasAnyAccessLocked(id, caller.ID) {
		fail(w, errors.New("Project not found"))
		return
	}
	var members []map[string]any
	for _, a := range s.access {
		if a.ProjectID != id {
			continue
		}
		if u := s.userByIDLocked(a.UserID); u != nil {
			members = append(members, map[string]any{
				"permissions": a.Permissions,
				"user":        u.dict(),
			})
		}
	}
	writeJSON(w, http.StatusOK, paginate(members, page, size))
}
