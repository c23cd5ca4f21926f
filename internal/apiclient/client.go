// Package apiclient is the client facade of the Silicate REST API. Every
// method issues exactly one request and hands back the parsed response or
// the error untouched; nothing is validated, retried or cached.
package apiclient

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"silicate/internal/httpx"
	"silicate/internal/kvstore"
)

// Config contains the settings used by [New].
type Config struct {
	// BaseURL is the MANDATORY API base URL, e.g. http://localhost:5000.
	BaseURL string

	// HTTPClient is the OPTIONAL client; http.DefaultClient when nil.
	HTTPClient httpx.HTTPClient

	// Logger is the OPTIONAL logger; nil discards.
	Logger *zap.Logger

	// UserAgent is the OPTIONAL User-Agent header value.
	UserAgent string

	// Tokens is the OPTIONAL token slot; an in-memory one when nil.
	Tokens *TokenStore
}

// Client talks to the Silicate API.
type Client struct {
	baseURL    *url.URL
	httpClient httpx.HTTPClient
	logger     *zap.Logger
	userAgent  string
	tokens     *TokenStore
}

// ErrNoBaseURL is returned by New when Config.BaseURL is empty.
var ErrNoBaseURL = errors.New("apiclient: empty base URL")

// New creates a new Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    u,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		userAgent:  cfg.UserAgent,
		tokens:     cfg.Tokens,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.tokens == nil {
		c.tokens = NewTokenStore(&kvstore.Memory{})
	}
	return c, nil
}

// Tokens returns the token slot this client reads from.
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// config returns the httpx config for an anonymous request.
func (c *Client) config() *httpx.Config {
	return &httpx.Config{
		Client:    c.httpClient,
		Logger:    c.logger,
		UserAgent: c.userAgent,
	}
}

// authConfig is like config but carries the bearer token stored right now.
func (c *Client) authConfig() (*httpx.Config, error) {
	authorization, err := c.tokens.Authorization()
	if err != nil {
		return nil, err
	}
	cfg := c.config()
	cfg.Authorization = authorization
	return cfg, nil
}
