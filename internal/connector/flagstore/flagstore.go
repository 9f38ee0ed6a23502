// Package flagstore persists the connector's previously-connected marker.
// It stands in for the browser's local storage flag: one boolean that
// decides whether silent reconnection is attempted on startup.
package flagstore

import (
	"os"
)

// Store persists the previously-connected flag.
type Store interface {
	// Set records that a connection succeeded.
	Set() error
	// Clear removes the marker.
	Clear() error
	// IsSet reports whether the marker is present.
	IsSet() bool
}

// FileStore persists the flag as a marker file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Set() error {
	return os.WriteFile(s.path, []byte("true\n"), 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) IsSet() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// MemoryStore keeps the flag in memory, for tests and ephemeral sessions.
type MemoryStore struct {
	set bool
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set() error   { s.set = true; return nil }
func (s *MemoryStore) Clear() error { s.set = false; return nil }
func (s *MemoryStore) IsSet() bool  { return s.set }
