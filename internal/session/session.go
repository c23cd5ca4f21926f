// Package session turns a loaded configuration into a ready API client:
// HTTP transport, token slot and logger.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"silicate/internal/apiclient"
	"silicate/internal/certs"
	"silicate/internal/config"
	"silicate/internal/crypto"
	"silicate/internal/device"
	"silicate/internal/kvstore"
)

// tokenKeyInfo is the HKDF info used when the token key comes from the
// machine fingerprint.
const tokenKeyInfo = "silicate token v1"

var fingerprint = device.Fingerprint

// NewClient builds the API client described by cfg.
func NewClient(cfg config.Config, logger *zap.Logger) (*apiclient.Client, error) {
	httpClient, err := HTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	tokens, err := OpenTokens(cfg, logger)
	if err != nil {
		return nil, err
	}
	return apiclient.New(apiclient.Config{
		BaseURL:    cfg.Server,
		HTTPClient: httpClient,
		Logger:     logger,
		UserAgent:  cfg.UserAgent,
		Tokens:     tokens,
	})
}

// HTTPClient returns a client with the configured timeout, trusting the
// certificates under ca_file in addition to the system roots.
func HTTPClient(cfg config.Config, logger *zap.Logger) (*http.Client, error) {
	if cfg.CAFile == "" {
		return &http.Client{Timeout: cfg.Timeout}, nil
	}
	pool, skipped, err := certs.LoadPool(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", cfg.CAFile, err)
	}
	for _, cert := range skipped {
		logger.Warn("skipping expired CA certificate",
			zap.String("subject", cert.Subject.String()),
			zap.Time("not_after", cert.NotAfter))
	}
	return certs.HTTPClient(pool, cfg.Timeout), nil
}

// OpenTokens returns the token slot in the state dir, sealed when
// token_encryption is on.
func OpenTokens(cfg config.Config, logger *zap.Logger) (*apiclient.TokenStore, error) {
	fs, err := kvstore.NewFS(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("session: state dir: %w", err)
	}
	if !cfg.TokenEncryption {
		return apiclient.NewTokenStore(fs), nil
	}
	key, err := TokenKey(cfg, logger)
	if err != nil {
		return nil, err
	}
	sealed, err := kvstore.NewSealed(fs, key)
	if err != nil {
		return nil, err
	}
	return apiclient.NewTokenStore(sealed), nil
}

// TokenKey returns the key sealing the token: SILICATE_TOKEN_KEY, then the
// key file, then a key derived from the machine fingerprint.
func TokenKey(cfg config.Config, logger *zap.Logger) ([]byte, error) {
	key, err := crypto.ReadKey(os.Getenv(config.TokenKeyEnv), cfg.KeyFile())
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, crypto.ErrNoKey) {
		return nil, fmt.Errorf("session: token key: %w", err)
	}
	fp, err := fingerprint()
	if err != nil {
		return nil, fmt.Errorf("session: no token key and %w", err)
	}
	logger.Debug("deriving token key from device fingerprint")
	return crypto.DeriveKey([]byte(fp), tokenKeyInfo)
}
