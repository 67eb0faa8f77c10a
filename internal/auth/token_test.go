package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	m.now = func() time.Time { return now }
	return m
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)

	token, expires, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if want := now.Add(7 * 24 * time.Hour); !expires.Equal(want) {
		t.Errorf("expires = %v, want %v", expires, want)
	}

	userID, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Parse() = %q, want user-1", userID)
	}

	exp, err := ExpiryOf(token)
	if err != nil {
		t.Fatalf("ExpiryOf() error = %v", err)
	}
	if !exp.Equal(expires) {
		t.Errorf("ExpiryOf() = %v, want %v", exp, expires)
	}
}

func TestParseRejects(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)
	valid, _, _ := m.Issue("user-1")

	other, _ := NewTokenManager("other-secret", time.Hour)
	foreign, _, _ := other.Issue("user-1")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte("test-secret"))
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	expired := newTestManager(t, now.Add(7*24*time.Hour+time.Second))

	tests := []struct {
		name  string
		m     *TokenManager
		token string
	}{
		{"Wrong signature", m, foreign},
		{"Garbage", m, "not.a.token"},
		{"Missing expiry", m, noExp},
		{"Missing user", m, noUser},
		{"None algorithm", m, unsigned},
		{"Elapsed expiry", expired, valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Errorf("NewTokenManager() with empty secret succeeded")
	}
	if _, err := NewTokenManager("s", 0); err == nil {
		t.Errorf("NewTokenManager() with zero ttl succeeded")
	}
}
