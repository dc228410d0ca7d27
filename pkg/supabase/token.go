package supabase

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of a Supabase Auth access token we rely on.
type AccessTokenClaims struct {
	jwt.RegisteredClaims

	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Role         string         `json:"role,omitempty"` // Postgres role, "authenticated" for signed-in users
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type VerifiedSession struct {
	AuthID    string
	Email     string
	ExpiresAt time.Time
	Metadata  map[string]any
}

// VerifyAccessToken verifies an access token (JWT, HS256) issued by Supabase Auth using the project's JWT secret.
func VerifyAccessToken(tokenString, jwtSecret, audience string, now time.Time) (*VerifiedSession, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("missing jwt secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(opts...)

	claims := &AccessTokenClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return nil, fmt.Errorf("missing subject in token")
	}

	return &VerifiedSession{
		AuthID:    sub,
		Email:     strings.ToLower(strings.TrimSpace(claims.Email)),
		ExpiresAt: claims.ExpiresAt.Time,
		Metadata:  claims.UserMetadata,
	}, nil
}
