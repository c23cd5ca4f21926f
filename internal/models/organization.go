package models

// Organization is returned by GET /api/v1/organization.
type Organization struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	CreatorID ID        `json:"creator_id"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Health is returned by GET /health.
type Health struct {
	Status string `json:"status"`
}

// ErrorBody is the envelope the server uses for every failure.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
