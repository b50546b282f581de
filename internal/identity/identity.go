// Package identity persists the caller-chosen display name between sessions.
// It is a boundary adapter: business logic never reads it directly and
// instead receives the name as an explicit value.
package identity

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEmptyName is returned when Set is called with a blank or
// whitespace-only name. The stored value is left unchanged.
var ErrEmptyName = errors.New("display name cannot be empty")

// Store is a durable single-key store for the caller's display name.
type Store struct {
	mu   sync.Mutex
	path string
}

type identityFile struct {
	UserName string `json:"userName"`
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the persisted display name. The second return is false when no
// name has been set yet (or the backing file is unreadable, which is treated
// the same as absent).
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	var f identityFile
	if err := json.Unmarshal(data, &f); err != nil || f.UserName == "" {
		return "", false
	}
	return f.UserName, true
}

// Set trims name, rejects an empty result with ErrEmptyName, and otherwise
// persists and returns the trimmed value synchronously.
func (s *Store) Set(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(identityFile{UserName: trimmed})
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return "", err
	}
	return trimmed, nil
}
