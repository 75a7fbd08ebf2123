package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}

	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error: %v", err)
	}
	if ts.TTL() != DefaultSessionTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultSessionTTL)
	}
}

// =========================================================================
// ROUND TRIP TESTS
// =========================================================================

func TestGenerateValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q does not have three parts", token)
	}

	userID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Validate() userID = %q, want %q", userID, "user-123")
	}
}

func TestGenerate_EmptySubject(t *testing.T) {
	if _, err := newTestTokenService(t).Generate(""); err == nil {
		t.Fatal("Generate(\"\") should fail")
	}
}

// =========================================================================
// VALIDATE FAILURE TESTS
// =========================================================================

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate(expired) error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_ExpiresWithClock(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-123")

	ts.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := ts.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() after TTL error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	a := newTestTokenService(t)
	b, _ := NewTokenService("a-completely-different-secret", time.Hour)

	token, _ := a.Generate("user-123")
	if _, err := b.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Validate() with wrong secret error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidate_Tampered(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-123")

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := ts.Validate(strings.Join(parts, ".")); err == nil {
		t.Fatal("Validate() accepted a tampered token")
	}
}

func TestValidate_Garbage(t *testing.T) {
	for _, in := range []string{"", "not.a.token", "abc"} {
		if _, err := newTestTokenService(t).Validate(in); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Validate(%q) error = %v, want ErrTokenInvalid", in, err)
		}
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	ts := newTestTokenService(t)

	c := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)

	if _, err := ts.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Validate(wrong issuer) error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidate_NoneAlgorithm(t *testing.T) {
	ts := newTestTokenService(t)

	c := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() accepted an unsigned token")
	}
}

func TestValidate_NoExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	c := jwt.RegisteredClaims{Subject: "user-123", Issuer: issuer}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() accepted a token without exp")
	}
}
