// Package session holds the process-wide auth token and current-semester
// default as an explicit object passed to the HTTP client, not ambient
// globals, so tests can run several simulated sessions side by side.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"registryctl/internal/model"
)

// Session carries the bearer token, the logged-in user and the current
// semester. The token is the only state persisted locally; everything else
// is in-memory and page-scoped.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      *model.User
	semester  string
	tokenFile string
}

// New returns an empty session. When tokenFile is non-empty a previously
// saved token is loaded from it.
func New(tokenFile string) *Session {
	s := &Session{tokenFile: tokenFile}
	if tokenFile != "" {
		if raw, err := os.ReadFile(tokenFile); err == nil {
			s.token = string(raw)
		}
	}
	return s
}

// Token returns the current bearer token; callers must read it fresh per
// request rather than capture it.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token and, when a token file is configured, persists
// it with user-only permissions.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	file := s.tokenFile
	s.mu.Unlock()

	if file == "" {
		return nil
	}
	if token == "" {
		err := os.Remove(file)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(token), 0o600)
}

// User returns the logged-in user, nil before login.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser records the logged-in user.
func (s *Session) SetUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Clear wipes token and user, e.g. on logout.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.SetToken("")
}

// Semester returns the current-semester default.
func (s *Session) Semester() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.semester
}

// SetSemester records the current-semester default, seeded from the backend
// on startup and mutable by admins.
func (s *Session) SetSemester(semester string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.semester = semester
}

// Role helpers derived from the logged-in user.

// IsAdmin reports whether the session user holds the ADMIN role.
func (s *Session) IsAdmin() bool { return s.hasRole(model.RoleAdmin) }

// IsTeacher reports whether the session user holds the TEACHER role.
func (s *Session) IsTeacher() bool { return s.hasRole(model.RoleTeacher) }

// IsViewer reports whether the session user holds the VIEWER role.
func (s *Session) IsViewer() bool { return s.hasRole(model.RoleViewer) }

func (s *Session) hasRole(role string) bool {
	u := s.User()
	return u != nil && u.EffectiveRole() == role
}

// TokenClaims is the payload peeked out of the bearer token without
// signature verification, used only for the 403 role-staleness hint.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// PeekClaims decodes the token payload without verifying it. The backend is
// the authority on the token; this is diagnostics only.
func (s *Session) PeekClaims() (*TokenClaims, error) {
	token := s.Token()
	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenLooksExpired reports whether the token payload carries an exp in the
// past. False when the token cannot be decoded.
func (s *Session) TokenLooksExpired() bool {
	claims, err := s.PeekClaims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
