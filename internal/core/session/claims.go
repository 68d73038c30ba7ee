package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrOpaqueToken is returned when the credential is not a JWT.
var ErrOpaqueToken = errors.New("credential is not a JWT")

// Claims is the subset of token claims shown to the user.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Claims decodes the credential's registered claims without verifying the
// signature. Verification is the remote store's job; the client only uses the
// claims for display and expiry hints.
func (s *Session) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, ErrNotFound
	}
	return ParseClaims(token)
}

// ParseClaims decodes registered claims from a JWT without verification.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, ErrOpaqueToken
	}

	c := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
