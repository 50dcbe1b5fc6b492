package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var ErrNoToken = errors.New("no token stored")

// Claims is the subset of token claims the client surfaces for
// display: who the token says it belongs to and when it lapses.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token's exp claim has passed. Informational
// only: authentication is still decided by presence of user and token,
// and a stale session is corrected by Refresh or the next 401.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenClaims parses the stored bearer token without verifying its
// signature; the client holds no keys and the backend remains the
// authority on validity.
func (s *Store) TokenClaims() (*Claims, error) {
	raw, ok := s.tokens.Token()
	if !ok {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[Store.TokenClaims] parse token")
	}

	parsed := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		parsed.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		parsed.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		parsed.IssuedAt = iat.Time
	}
	return parsed, nil
}
