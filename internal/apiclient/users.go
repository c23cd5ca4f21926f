package apiclient

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"silicate/internal/httpx"
	"silicate/internal/models"
)

// SignUp creates a user together with a new organization.
//
// POST /api/v1/users/signup
func (c *Client) SignUp(ctx context.Context, creds models.Credentials) (*models.SignUpResult, error) {
	return httpx.PostJSON[models.Credentials, *models.SignUpResult](
		ctx, c.config(), c.endpoint("/api/v1/users/signup", nil), creds)
}

// GetToken exchanges credentials for a session token. It does not store it;
// see Login.
//
// POST /api/v1/users/token
func (c *Client) GetToken(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	return httpx.PostJSON[models.Credentials, *models.Token](
		ctx, c.config(), c.endpoint("/api/v1/users/token", nil), creds)
}

// ErrNoToken is returned by Login when the server answered 2xx with a null
// body, so there is nothing to store.
var ErrNoToken = errors.New("apiclient: token response is null")

// Login calls GetToken and writes the token into the token slot.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	token, err := c.GetToken(ctx, creds)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNoToken
	}
	if err := c.tokens.Set(token.Token); err != nil {
		return nil, err
	}
	c.logger.Info("session token stored",
		zap.String("username", creds.Username),
		zap.String("organization", creds.OrganizationName))
	return token, nil
}

// GetCurrentUser returns the user the stored token belongs to.
//
// GET /api/v1/users/me
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[*models.User](ctx, cfg, c.endpoint("/api/v1/users/me", nil))
}

// ChangeCurrentUserPassword sets a new password for the current user.
//
// PUT /api/v1/users/me/password
func (c *Client) ChangeCurrentUserPassword(ctx context.Context, password string) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PutJSON[models.PasswordChange, *models.Ref](
		ctx, cfg, c.endpoint("/api/v1/users/me/password", nil), models.PasswordChange{Password: password})
}

// ===== Organization administration =====

// AddUser creates a user in the caller's organization. The server generates
// the password and returns it once. Admin only.
//
// POST /api/v1/users
func (c *Client) AddUser(ctx context.Context, username string, admin bool) (*models.GeneratedPassword, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PostJSON[models.NewUser, *models.GeneratedPassword](
		ctx, cfg, c.endpoint("/api/v1/users", nil), models.NewUser{Username: username, Admin: admin})
}

// FetchUsers lists one page of the organization's users. Pages count from
// 0; the server defaults to page 0 of size 50.
//
// GET /api/v1/users?page=&size=
func (c *Client) FetchUsers(ctx context.Context, page, size int) ([]models.User, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[[]models.User](ctx, cfg, c.endpoint("/api/v1/users", pageQuery(page, size)))
}

// GetUser returns a user of the caller's organization.
//
// GET /api/v1/users/{id}
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[*models.User](ctx, cfg, c.endpoint("/api/v1/users/"+url.PathEscape(id), nil))
}

// ResetUserPassword makes the server generate a new password. Admin only.
//
// PUT /api/v1/users/{id}/password
func (c *Client) ResetUserPassword(ctx context.Context, id string) (*models.GeneratedPassword, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PutJSON[any, *models.GeneratedPassword](
		ctx, cfg, c.endpoint("/api/v1/users/"+url.PathEscape(id)+"/password", nil), nil)
}

// ChangeUserAdmin grants or revokes the admin flag. Admin only.
//
// PUT /api/v1/users/{id}/admin
func (c *Client) ChangeUserAdmin(ctx context.Context, id string, admin bool) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.PutJSON[models.AdminChange, *models.Ref](
		ctx, cfg, c.endpoint("/api/v1/users/"+url.PathEscape(id)+"/admin", nil), models.AdminChange{Admin: admin})
}

// DeleteUser removes a user from the organization. Admin only.
//
// DELETE /api/v1/users/{id}
func (c *Client) DeleteUser(ctx context.Context, id string) (*models.Ref, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.DeleteJSON[*models.Ref](ctx, cfg, c.endpoint("/api/v1/users/"+url.PathEscape(id), nil))
}
