package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Keys shared by the session and request layers. They must always be written
// and cleared together with in-memory session state.
const (
	KeyAuthToken = "authToken"
	KeyUserData  = "userData"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	stateFileName  = "state.json"
	sqliteFileName = "state.db"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("storage: store is closed")

// Store is a durable string key/value slot. Writes are last-writer-wins.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes every listed key in one operation. Absent keys are ignored.
	Remove(keys ...string) error
	// Close releases resources held by the store.
	Close() error
}

// Open builds the store selected by backend, rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(filepath.Join(dir, stateFileName)), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, sqliteFileName))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", backend)
	}
}
