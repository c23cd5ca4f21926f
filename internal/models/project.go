package models

// PermissionAll grants every permission on a project. Project creators get it.
const PermissionAll = "all"

// Project is returned by GET /api/v1/projects/{id}.
type Project struct {
	ID             ID        `json:"id"`
	Name           string    `json:"name"`
	CreatorID      ID        `json:"creator_id"`
	OrganizationID ID        `json:"organization_id"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

// ProjectName is the body of POST /api/v1/projects.
type ProjectName struct {
	Name string `json:"name"`
}

// ProjectUpdate is the body of PUT /api/v1/projects/{id}. An empty name
// leaves the name unchanged.
type ProjectUpdate struct {
	Name string `json:"name,omitempty"`
}

// ProjectAccess is one entry of GET /api/v1/projects: a project the caller
// can see and the caller's permissions on it.
type ProjectAccess struct {
	Permissions []string `json:"permissions"`
	Project     Project  `json:"project"`
}

// ProjectMember is one entry of GET /api/v1/projects/{id}/users.
type ProjectMember struct {
	Permissions []string `json:"permissions"`
	User        User     `json:"user"`
}

// Permissions is the body of the project access endpoints.
type Permissions struct {
	Permissions []string `json:"permissions"`
}

// AccessGrant is returned when permissions are added to a project member.
type AccessGrant struct {
	ProjectID   ID       `json:"project_id"`
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

// AccessRef is returned when project permissions are removed.
type AccessRef struct {
	ProjectID ID `json:"project_id"`
	UserID    ID `json:"user_id"`
}
