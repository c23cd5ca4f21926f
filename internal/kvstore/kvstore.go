// Package kvstore holds the client-side key-value storage.
package kvstore

import "errors"

// ErrNoSuchKey indicates that there's no value for the given key.
var ErrNoSuchKey = errors.New("no such key")

// KeyValueStore is a small key-value store. Get fails with an error
// wrapping ErrNoSuchKey when the key was never set.
type KeyValueStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}
