package state

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what can be read from a JWT-shaped token without verifying it.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the claims carry an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the current token's registered claims for display only.
// The signature is not checked; the backend stays the authority. ok is false
// when logged out or when the token is not a JWT.
func (a *Auth) Claims() (Claims, bool) {
	tok := a.Token()
	if strings.Count(tok, ".") != 2 {
		return Claims{}, false
	}
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &rc); err != nil {
		return Claims{}, false
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}
