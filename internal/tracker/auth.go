package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/session"
)

// ErrMissingCredentials is returned when email or password is empty.
var ErrMissingCredentials = errors.New("email and password are required")

// Authenticator exchanges a password for credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Credentials, error)
}

// AuthService drives the session lifecycle: login acquires, logout releases.
// A failed login never produces a session.
type AuthService struct {
	auth    Authenticator
	session *session.Session
	cache   *Cache
	notify  *notify.Channel
	log     zerolog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(auth Authenticator, sess *session.Session, cache *Cache, ch *notify.Channel, log zerolog.Logger) *AuthService {
	return &AuthService{
		auth:    auth,
		session: sess,
		cache:   cache,
		notify:  ch,
		log:     logging.Named(log, "auth"),
	}
}

// Login authenticates and stores the resulting credentials.
func (a *AuthService) Login(ctx context.Context, email, password string) (session.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Profile{}, ErrMissingCredentials
	}

	creds, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.log.Warn().Err(err).Str("email", email).Msg("login failed")
		a.notify.Errorf("Login failed: %v", err)
		return session.Profile{}, err
	}

	if creds.Profile.Email == "" {
		creds.Profile.Email = email
	}
	if err := a.session.Acquire(ctx, creds); err != nil {
		a.notify.Errorf("Login failed: %v", err)
		return session.Profile{}, err
	}

	a.log.Info().Str("user", creds.Profile.DisplayName()).Msg("logged in")
	a.notify.Successf("Logged in as %s", creds.Profile.DisplayName())
	return creds.Profile, nil
}

// Logout releases the session and forgets the cached tasks.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.session.Release(ctx); err != nil {
		return err
	}
	a.cache.Replace(nil)
	a.log.Info().Msg("logged out")
	return nil
}
