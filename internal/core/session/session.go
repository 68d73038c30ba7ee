// Package session holds the authenticated user's credential and profile.
//
// A Session is created once at startup and passed by reference to everything
// that needs the credential. Its lifecycle is Acquire (login) -> used by all
// requests -> Release (logout). The credential is persisted through a Store so
// it survives across invocations; an absent credential means "not authenticated".
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned by a Store when no credentials are persisted.
	ErrNotFound = errors.New("no stored session")
	// ErrEmptyToken is returned when acquiring a session without a token.
	ErrEmptyToken = errors.New("credential token is empty")
)

// Profile describes the authenticated user.
type Profile struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// DisplayName returns the best available human readable name.
func (p Profile) DisplayName() string {
	switch {
	case p.Username != "":
		return p.Username
	case p.Email != "":
		return p.Email
	default:
		return p.ID
	}
}

// Credentials is the persisted session state.
type Credentials struct {
	Token   string  `json:"token"`
	Profile Profile `json:"user"`
}

// Store persists credentials to durable storage.
type Store interface {
	// Load returns the stored credentials or ErrNotFound.
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// Session is the process-wide authentication state. It is safe for concurrent use.
type Session struct {
	store Store

	mu        sync.RWMutex
	creds     Credentials
	onRelease []func()
}

// New creates an unauthenticated session backed by store. A nil store keeps the
// session in memory only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Restore loads persisted credentials. Missing credentials are not an error;
// the session simply stays unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	creds, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Reload re-reads the persisted credentials, picking up a login or logout made
// by another process. It reports whether the held token changed. Losing the
// credential this way runs the release hooks.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	creds, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("reload session: %w", err)
	}

	s.mu.Lock()
	prev := s.creds.Token
	s.creds = creds
	changed := prev != creds.Token
	var hooks []func()
	if changed && creds.Token == "" {
		hooks = make([]func(), len(s.onRelease))
		copy(hooks, s.onRelease)
	}
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return changed, nil
}

// Acquire installs new credentials and persists them.
func (s *Session) Acquire(ctx context.Context, creds Credentials) error {
	creds.Token = strings.TrimSpace(creds.Token)
	if creds.Token == "" {
		return ErrEmptyToken
	}

	if s.store != nil {
		if err := s.store.Save(ctx, creds); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Release forgets the credentials, removes them from durable storage and runs
// the release hooks.
func (s *Session) Release(ctx context.Context) error {
	s.mu.Lock()
	s.creds = Credentials{}
	hooks := make([]func(), len(s.onRelease))
	copy(hooks, s.onRelease)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// OnRelease registers fn to run when the session is released.
func (s *Session) OnRelease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRelease = append(s.onRelease, fn)
}

// Token returns the bearer credential, if any.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token, s.creds.Token != ""
}

// Profile returns the user profile, if authenticated.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Profile, s.creds.Token != ""
}

// Authenticated reports whether a credential is held.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}
