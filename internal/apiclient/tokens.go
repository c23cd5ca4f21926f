package apiclient

import (
	"errors"

	"silicate/internal/kvstore"
)

// TokenKey is the storage key of the session token.
const TokenKey = "token"

// missingToken is what an empty slot reads as in the Authorization header.
const missingToken = "null"

// TokenStore is the single slot holding the session token. The last write
// wins; the token is never refreshed or invalidated here.
type TokenStore struct {
	kvs kvstore.KeyValueStore
}

// NewTokenStore returns a TokenStore saving into kvs.
func NewTokenStore(kvs kvstore.KeyValueStore) *TokenStore {
	return &TokenStore{kvs: kvs}
}

// Get returns the stored token. ok is false when nothing was stored yet.
func (s *TokenStore) Get() (token string, ok bool, err error) {
	data, err := s.kvs.Get(TokenKey)
	if errors.Is(err, kvstore.ErrNoSuchKey) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) error {
	return s.kvs.Set(TokenKey, []byte(token))
}

// Authorization returns "Bearer " followed by the stored token, or by
// "null" when there is none.
func (s *TokenStore) Authorization() (string, error) {
	token, ok, err := s.Get()
	if err != nil {
		return "", err
	}
	if !ok {
		token = missingToken
	}
	return "Bearer " + token, nil
}
