// Package auth reads the claims the remote service places in its access tokens.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"purecerts-console/internal/model"
)

var ErrMalformedToken = errors.New("malformed access token")

type Claims struct {
	UserID   string     `json:"user_id"`
	TenantID string     `json:"tenant_id"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims without checking the signature. The console
// does not hold the signing key, so the result is display data only and never
// an authorization decision.
func InspectToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// ExpiresAtTime reports the token expiry; ok is false when the token carries none.
func (c *Claims) ExpiresAtTime() (time.Time, bool) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

func (c *Claims) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAtTime()
	return ok && !now.Before(exp)
}
