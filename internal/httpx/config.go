// Package httpx sends JSON requests and reads JSON responses.
package httpx

import (
	"net/http"

	"go.uber.org/zap"
)

// HTTPClient is the subset of *http.Client used here.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration shared by [GetJSON], [PostJSON], [PutJSON]
// and [DeleteJSON].
type Config struct {
	// Authorization contains the OPTIONAL Authorization header value to use.
	Authorization string

	// Client is the MANDATORY [HTTPClient] to use.
	Client HTTPClient

	// Logger is the OPTIONAL logger; nil discards.
	Logger *zap.Logger

	// UserAgent is the OPTIONAL User-Agent header value to use.
	UserAgent string
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
