// Package token inspects session tokens issued by the booking API.
//
// Tokens are opaque to the client; when the server happens to issue a JWT
// its claims are decoded for display (who is signed in, when the token
// expires). Signatures are NOT verified here: the server remains the only
// authority on token validity.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-booking-client/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims holds the registered claims plus anything else the server put in the token.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Extra     map[string]any
}

// LooksLikeJWT reports whether raw has the three dot-separated segments of a compact JWT.
func LooksLikeJWT(raw string) bool {
	return strings.Count(raw, ".") == 2
}

// Parse decodes the claims of a JWT without verifying its signature.
func Parse(raw string) (*Claims, error) {
	if !LooksLikeJWT(raw) {
		return nil, fmt.Errorf("[token Parse] not a JWT")
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return nil, fmt.Errorf("[token Parse] %w", err)
	}
	return fromMapClaims(mapClaims), nil
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without exp never expire client-side.
func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && NowTimeFunc().After(c.ExpiresAt)
}

var registered = map[string]bool{
	"sub": true, "email": true, "name": true, "iss": true,
	"exp": true, "iat": true, "nbf": true, "aud": true,
	"jti": true, "roles": true,
}

func fromMapClaims(m jwt.MapClaims) *Claims {
	c := &Claims{Extra: make(map[string]any)}

	c.Subject, _ = m.GetSubject()
	c.Issuer, _ = m.GetIssuer()
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if v, ok := m["email"].(string); ok {
		c.Email = v
	}
	if v, ok := m["name"].(string); ok {
		c.Name = v
	}
	if roles, ok := m["roles"].([]any); ok {
		c.Roles = utils.ToStringSlice(roles)
	}

	for k, v := range m {
		if !registered[k] {
			c.Extra[k] = v
		}
	}
	return c
}
