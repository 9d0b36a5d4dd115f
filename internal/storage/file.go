package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileStore writes all keys to a single JSON object on disk. A sibling lock
// file serializes access across processes.
type FileStore struct {
	path string
	lock *flock.Flock

	mu     sync.Mutex
	closed bool
}

// NewFileStore builds a FileStore backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads key from disk. A missing file resolves to an absent key.
func (s *FileStore) Get(key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.withLock(false, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		value, ok = values[key]
		return nil
	})
	return value, ok, err
}

// Set persists value under key with restricted permissions.
func (s *FileStore) Set(key, value string) error {
	return s.withLock(true, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		values[key] = value
		return s.write(values)
	})
}

// Remove deletes keys in a single rewrite of the backing file.
func (s *FileStore) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.withLock(true, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		changed := false
		for _, key := range keys {
			if _, ok := values[key]; ok {
				delete(values, key)
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return s.write(values)
	})
}

// Close marks the store closed. The lock is only held during operations.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) withLock(exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}

	var err error
	if exclusive {
		err = s.lock.Lock()
	} else {
		err = s.lock.RLock()
	}
	if err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	return fn()
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
