package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// FS is a file-system based store: one file per key, read and written under
// a file lock so a CLI and the GUI can share the directory.
type FS struct {
	basedir string
}

var _ KeyValueStore = &FS{}

// NewFS creates basedir if needed and returns a store rooted there.
func NewFS(basedir string) (*FS, error) {
	if err := os.MkdirAll(basedir, 0700); err != nil {
		return nil, err
	}
	return &FS{basedir: basedir}, nil
}

func (kvs *FS) filename(key string) string {
	return filepath.Join(kvs.basedir, key)
}

// Get returns the specified key's value. Only a missing file is reported as
// ErrNoSuchKey; other read failures are returned as they are.
func (kvs *FS) Get(key string) ([]byte, error) {
	data, err := lockedfile.Read(kvs.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchKey, err.Error())
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set sets the value of a specific key.
func (kvs *FS) Set(key string, value []byte) error {
	return lockedfile.Write(kvs.filename(key), bytes.NewReader(value), 0600)
}
