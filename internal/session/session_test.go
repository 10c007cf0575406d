package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"registryctl/internal/model"
)

func signedToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestTokenPersistence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "token")
	s := New(file)
	if err := s.SetToken("abc123"); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "abc123" {
		t.Errorf("persisted token = %q", raw)
	}
	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	// A fresh session picks the token back up.
	s2 := New(file)
	if s2.Token() != "abc123" {
		t.Errorf("reloaded token = %q", s2.Token())
	}
}

func TestClearRemovesTokenFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "token")
	s := New(file)
	if err := s.SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	s.SetUser(&model.User{ID: 1, RoleName: model.RoleAdmin})

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.Token() != "" || s.User() != nil {
		t.Error("Clear should drop token and user")
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("token file should be removed")
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear errored: %v", err)
	}
}

func TestRoleHelpers(t *testing.T) {
	s := New("")
	if s.IsAdmin() || s.IsTeacher() || s.IsViewer() {
		t.Error("no user should mean no role")
	}
	s.SetUser(&model.User{RoleName: model.RoleTeacher})
	if !s.IsTeacher() || s.IsAdmin() {
		t.Error("TEACHER role misreported")
	}
}

func TestPeekClaims(t *testing.T) {
	s := New("")
	s.SetToken(signedToken(t, model.RoleAdmin, time.Now().Add(time.Hour)))

	claims, err := s.PeekClaims()
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("peeked role = %q", claims.Role)
	}
	if s.TokenLooksExpired() {
		t.Error("unexpired token reported as expired")
	}
}

func TestTokenLooksExpired(t *testing.T) {
	s := New("")
	s.SetToken(signedToken(t, model.RoleAdmin, time.Now().Add(-time.Minute)))
	if !s.TokenLooksExpired() {
		t.Error("expired token not detected")
	}

	s.SetToken("garbage")
	if s.TokenLooksExpired() {
		t.Error("undecodable token should not claim expiry")
	}
}
