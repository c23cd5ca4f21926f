package kvstore

import (
	"fmt"

	"silicate/internal/crypto"
)

// Sealed encrypts values before handing them to the wrapped store.
type Sealed struct {
	store KeyValueStore
	key   []byte
}

var _ KeyValueStore = &Sealed{}

// NewSealed wraps store. key must be crypto.KeySize bytes.
func NewSealed(store KeyValueStore, key []byte) (*Sealed, error) {
	if len(key) != crypto.KeySize {
		return nil, crypto.ErrInvalidKeyLength
	}
	return &Sealed{store: store, key: key}, nil
}

// Get reads and decrypts the value of key.
func (s *Sealed) Get(key string) ([]byte, error) {
	blob, err := s.store.Get(key)
	if err != nil {
		return nil, err
	}
	plain, err := crypto.Open(s.key, blob)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", key, err)
	}
	return plain, nil
}

// Set encrypts value and stores it under key.
func (s *Sealed) Set(key string, value []byte) error {
	blob, err := crypto.Seal(s.key, value)
	if err != nil {
		return err
	}
	return s.store.Set(key, blob)
}
