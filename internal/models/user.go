package models

// Credentials is the body of the signup and token endpoints. It is built by
// the caller per request and never retained.
type Credentials struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name"`
}

// SignUpResult is returned by POST /api/v1/users/signup.
type SignUpResult struct {
	ID             ID `json:"id"`
	OrganizationID ID `json:"organization_id"`
}

// Token is returned by POST /api/v1/users/token.
type Token struct {
	Token string `json:"token"`
}

// User is a member of an organization as returned by the users endpoints.
type User struct {
	ID             ID        `json:"id"`
	Username       string    `json:"username"`
	OrganizationID ID        `json:"organization_id"`
	Admin          bool      `json:"admin"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

// PasswordChange is the body of PUT /api/v1/users/me/password.
type PasswordChange struct {
	Password string `json:"password"`
}

// NewUser is the body of POST /api/v1/users.
type NewUser struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// GeneratedPassword is returned when the server creates or resets a
// password on behalf of an administrator.
type GeneratedPassword struct {
	ID       ID     `json:"id"`
	Password string `json:"password"`
}

// AdminChange is the body of PUT /api/v1/users/{id}/admin.
type AdminChange struct {
	Admin bool `json:"admin"`
}

// Ref is the {"id": ...} confirmation most mutating endpoints return.
type Ref struct {
	ID ID `json:"id"`
}
