package apiclient

import (
	"context"

	"silicate/internal/httpx"
	"silicate/internal/models"
)

// GetOrganization returns the organization of the current user.
//
// GET /api/v1/organization
func (c *Client) GetOrganization(ctx context.Context) (*models.Organization, error) {
	cfg, err := c.authConfig()
	if err != nil {
		return nil, err
	}
	return httpx.GetJSON[*models.Organization](ctx, cfg, c.endpoint("/api/v1/organization", nil))
}
