package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds the claims of a user access token that are useful in logs.
// They are read without verifying the signature and must never be used to
// grant access; the auth backend is the only authority on a token.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past at now
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// PeekClaims decodes token claims without signature verification
func PeekClaims(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := &accessClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	out := &TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
