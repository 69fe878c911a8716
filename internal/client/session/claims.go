package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can learn from a session token without the
// signing key. Nothing here is trusted for authorization; the backend
// re-validates every request.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ErrOpaqueToken is returned when the token is not a JWT.
var ErrOpaqueToken = errors.New("session token is not a JWT")

// Inspect decodes the token payload without verifying its signature.
func Inspect(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, ErrOpaqueToken
	}

	c := Claims{Subject: tc.Subject, Email: tc.Email, Role: tc.Role}
	if c.Subject == "" {
		c.Subject = tc.UserID
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the claims carry an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
