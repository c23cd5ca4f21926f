package kvstore

import (
	"bytes"
	"sync"
)

// Memory is an in-memory key-value store. Values are copied in and out.
type Memory struct {
	m  map[string][]byte
	mu sync.Mutex
}

var _ KeyValueStore = &Memory{}

// Get returns the specified key's value.
func (kvs *Memory) Get(key string) ([]byte, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	value, ok := kvs.m[key]
	if !ok {
		return nil, ErrNoSuchKey
	}
	return bytes.Clone(value), nil
}

// Set sets a key into the key-value store.
func (kvs *Memory) Set(key string, value []byte) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	if kvs.m == nil {
		kvs.m = make(map[string][]byte)
	}
	kvs.m[key] = bytes.Clone(value)
	return nil
}
