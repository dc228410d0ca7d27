package supabase

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims AccessTokenClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifyAccessToken_SubjectAndEmail(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := sign(t, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7d1f0c1e-auth",
			Audience:  []string{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
		Email: "Employee@School.edu",
	}, secret)

	got, err := VerifyAccessToken(s, secret, "authenticated", now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.AuthID != "7d1f0c1e-auth" {
		t.Fatalf("auth id mismatch: %q", got.AuthID)
	}
	if got.Email != "employee@school.edu" {
		t.Fatalf("email should be normalized, got %q", got.Email)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := sign(t, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			Audience:  []string{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
	}, secret)

	if _, err := VerifyAccessToken(s, secret, "authenticated", now); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := sign(t, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}, "one")

	if _, err := VerifyAccessToken(s, "two", "", now); err == nil {
		t.Fatalf("expected signature failure")
	}
}
