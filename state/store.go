// Package state provides the local key/value store shared by the focus
// commands. Values are opaque strings (JSON documents in practice) keyed by
// name, mirroring a browser's localStorage for a single profile.
package state

import (
	"fmt"

	"github.com/grovetools/focus/errors"
)

// Store is a durable, synchronous, string-keyed store.
type Store interface {
	// Get returns the value and true if the key exists.
	Get(key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens the store for the given backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, errors.New(errors.ErrCodeStorageOpen, fmt.Sprintf("unknown storage backend %q", backend)).
			WithDetail("backend", backend)
	}
}
