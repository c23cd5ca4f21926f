package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrKeyExists is returned by GenerateKeyFile when the file is already there.
var ErrKeyExists = errors.New("crypto: key file already exists")

// ErrNoKey is returned by ReadKey when neither source holds a key.
var ErrNoKey = errors.New("crypto: no key configured")

// ReadKey decodes a hex key, taking envValue first and the file at path
// second.
func ReadKey(envValue, path string) ([]byte, error) {
	h := strings.TrimSpace(envValue)
	if h == "" {
		if path == "" {
			return nil, ErrNoKey
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ErrNoKey
			}
			return nil, err
		}
		h = strings.TrimSpace(string(data))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("key hex decode error: %w", err)
	}
	if len(b) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return b, nil
}

// GenerateKeyFile writes a fresh hex encoded key to path with mode 0600.
// It refuses to overwrite an existing file.
func GenerateKeyFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyExists, path)
	}
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyExists, path)
		}
		return nil, err
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		return nil, err
	}
	return key, nil
}
