package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession is returned when no user is signed in.
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired is returned when the stored token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// SessionStore holds the signed-in user's access token. It is shared
// process-wide; upload clients only read from it.
type SessionStore struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

var defaultStore = NewSessionStore()

// DefaultSessionStore returns the process-wide session store.
func DefaultSessionStore() *SessionStore {
	return defaultStore
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

// SetToken stores token. The expiry is read from the token's exp claim
// without verifying the signature; verification is the server's job.
// Tokens that do not parse as JWTs are stored without an expiry.
func (s *SessionStore) SetToken(token string) {
	var expiresAt time.Time
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Clear signs the user out.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// Token returns the current access token.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoSession
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}
