package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Custom claim names, namespaced under a private URI so they can never collide
// with registered claims.
const (
	ClaimAuthorities = "https://users.plshark.net/authorities"
	ClaimRefresh     = "https://users.plshark.net/refresh"
)

// Claims is the payload of every token this service issues. Exactly one of
// Authorities (access token) or Refresh (refresh token) is set; a token is
// never both.
type Claims struct {
	jwt.RegisteredClaims

	// Authorities carried by an access token.
	Authorities []string `json:"https://users.plshark.net/authorities,omitempty"`

	// Refresh marks a refresh token.
	Refresh bool `json:"https://users.plshark.net/refresh,omitempty"`
}

func newBaseClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
