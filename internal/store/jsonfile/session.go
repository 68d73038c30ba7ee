// Package jsonfile implements file-backed stores that persist state as JSON.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hay-kot/taskdeck/internal/core/session"
)

// SessionFileName is the default file name within the data directory.
const SessionFileName = "session.json"

// SessionStore implements session.Store using a JSON file readable only by
// the owner.
type SessionStore struct {
	path string
	mu   sync.RWMutex
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a session store at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *SessionStore) Path() string {
	return s.path
}

// Load returns the persisted credentials or session.ErrNotFound.
func (s *SessionStore) Load(ctx context.Context) (session.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.Credentials{}, session.ErrNotFound
		}
		return session.Credentials{}, err
	}

	if len(data) == 0 {
		return session.Credentials{}, session.ErrNotFound
	}

	var creds session.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return session.Credentials{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if creds.Token == "" {
		return session.Credentials{}, session.ErrNotFound
	}

	return creds, nil
}

// Save writes creds atomically with 0600 permissions.
func (s *SessionStore) Save(ctx context.Context, creds session.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Clear removes the session file. A missing file is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
