// Package token issues the signed access tokens returned by the login
// endpoint. Verification lives in the Auth middleware; the core service
// never sees a token.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Issuer signs HS256 access tokens for authenticated users.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer returns an Issuer signing with secret. Tokens expire after ttl;
// a non-positive ttl falls back to 24h.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token carrying the user's identity and role.
func (i *Issuer) Issue(user *domain.User) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	})
	return t.SignedString(i.secret)
}

// TTL reports the lifetime applied to issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }
