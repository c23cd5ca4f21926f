package apiclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"silicate/internal/httpx"
	"silicate/internal/models"
)

// Health queries the liveness endpoint.
//
// GET /health
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	return httpx.GetJSON[*models.Health](ctx, c.config(), c.endpoint("/health", nil))
}

// WaitReady polls Health with exponential backoff until the server answers,
// maxElapsed passes, or ctx is done. A zero maxElapsed waits until ctx is
// done.
func (c *Client) WaitReady(ctx context.Context, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxElapsed

	err := backoff.RetryNotify(func() error {
		_, err := c.Health(ctx)
		return err
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		c.logger.Info("server not ready, retrying",
			zap.String("server", c.BaseURL()),
			zap.Duration("next", next),
			zap.Error(err))
	})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
