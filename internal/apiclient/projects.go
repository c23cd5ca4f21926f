package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"silicate/internal/httpx"
	"silicate/internal/models"
)

func pageQuery(page, size int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	return query
}

func projectPath(id string, rest ...string) string {
	path := "/api/v1/projects/" + url.PathEscape(id)
	for _, part := range rest {
		path += "/" + url.PathEscape(part)
	}
	return path
}

// CreateProject creates a project in the caller's organization. The caller
// gets the "all" permission on it. Admin only.
//
// POST /api/v1/projects
func (c *Client) CreateProject(ctx context.Context, name string) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PostJSON[models.ProjectName, *models.Ref](
		ctx, cfg, c.endpoint("/api/v1/projects", nil), models.ProjectName{Name: name})
}

// FetchProjects lists one page of the projects the caller has access to,
// with the caller's permissions. Pages count from 0.
//
// GET /api/v1/projects?page=&size=
func (c *Client) FetchProjects(ctx context.Context, page, size int) ([]models.ProjectAccess, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[[]models.ProjectAccess](ctx, cfg, c.endpoint("/api/v1/projects", pageQuery(page, size)))
}

// GetProject returns a project the caller has any access to.
//
// GET /api/v1/projects/{id}
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[*models.Project](ctx, cfg, c.endpoint(projectPath(id), nil))
}

// RenameProject changes the project name. An empty name only touches the
// update time.
//
// PUT /api/v1/projects/{id}
func (c *Client) RenameProject(ctx context.Context, id, name string) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PutJSON[models.ProjectUpdate, *models.Ref](
		ctx, cfg, c.endpoint(projectPath(id), nil), models.ProjectUpdate{Name: name})
}

// DeleteProject removes a project.
//
// DELETE /api/v1/projects/{id}
func (c *Client) DeleteProject(ctx context.Context, id string) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.DeleteJSON[*models.Ref](ctx, cfg, c.endpoint(projectPath(id), nil))
}

// ===== Project access =====

// GrantProjectAccess adds permissions for a user of the organization.
//
// POST /api/v1/projects/{id}/users/{user_id}/access
func (c *Client) GrantProjectAccess(ctx context.Context, projectID, userID string, permissions []string) (*models.AccessGrant, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PostJSON[models.Permissions, *models.AccessGrant](
		ctx, cfg, c.endpoint(projectPath(projectID, "users", userID, "access"), nil),
		models.Permissions{Permissions: permissions})
}

// RevokeProjectAccess removes the given permissions from a project member.
//
// DELETE /api/v1/projects/{id}/users/{user_id}/access
func (c *Client) RevokeProjectAccess(ctx context.Context, projectID, userID string, permissions []string) (*models.AccessRef, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.DeleteJSONBody[models.Permissions, *models.AccessRef](
		ctx, cfg, c.endpoint(projectPath(projectID, "users", userID, "access"), nil),
		models.Permissions{Permissions: permissions})
}

// RemoveProjectUser drops every permission of a user on a project.
//
// DELETE /api/v1/projects/{id}/users/{user_id}
func (c *Client) RemoveProjectUser(ctx context.Context, projectID, userID string) (*models.AccessRef, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.DeleteJSON[*models.AccessRef](ctx, cfg, c.endpoint(projectPath(projectID, "users", userID), nil))
}

// FetchProjectUsers lists one page of a project's members. Pages count
// from 0.
//
// GET /api/v1/projects/{id}/users?page=&size=
func (c *Client) FetchProjectUsers(ctx context.Context, projectID string, page, size int) ([]models.ProjectMember, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[[]models.ProjectMember](
		ctx, cfg, c.endpoint(projectPath(projectID, "users"), pageQuery(page, size)))
}
