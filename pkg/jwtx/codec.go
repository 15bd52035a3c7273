package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadCredentials is the single failure value for every verification
// problem: bad signature, wrong issuer, expired, malformed, wrong token type.
// Callers must not learn which one it was.
var ErrBadCredentials = errors.New("jwtx: invalid credentials")

// UserAuthorities is the verified identity carried by an access token.
type UserAuthorities struct {
	Username    string
	Authorities []string
}

// Verifier is the verification side of a Codec, for callers that only check
// access tokens.
type Verifier interface {
	VerifyToken(token string) (UserAuthorities, error)
}

// Codec builds and verifies access and refresh tokens with one algorithm and
// issuer. Safe for unsynchronized concurrent use; all state is immutable.
type Codec struct {
	alg    *Algorithm
	issuer string
	parser *jwt.Parser
}

// AlgorithmName returns the name of the signing algorithm in use.
func (c *Codec) AlgorithmName() string { return c.alg.name }

// NewCodec returns a codec signing with alg and stamping/requiring issuer.
func NewCodec(alg *Algorithm, issuer string) *Codec {
	return &Codec{
		alg:    alg,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{alg.method.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// BuildAccessToken creates a signed access token carrying the user's
// authorities.
func (c *Codec) BuildAccessToken(username string, ttl time.Duration, authorities []string) (string, error) {
	claims := newBaseClaims(username, c.issuer, ttl, time.Now())
	claims.Authorities = authorities
	return c.sign(claims)
}

// BuildRefreshToken creates a signed refresh token. It carries no authorities,
// only the refresh marker.
func (c *Codec) BuildRefreshToken(username string, ttl time.Duration) (string, error) {
	claims := newBaseClaims(username, c.issuer, ttl, time.Now())
	claims.Refresh = true
	return c.sign(claims)
}

// VerifyToken decodes and verifies an access token. A missing authorities
// claim yields an empty set, not an error, so a refresh token presented here
// authorizes nothing.
func (c *Codec) VerifyToken(token string) (UserAuthorities, error) {
	claims, err := c.decode(token)
	if err != nil {
		return UserAuthorities{}, err
	}

	authorities := claims.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return UserAuthorities{
		Username:    claims.Subject,
		Authorities: authorities,
	}, nil
}

// VerifyRefreshToken decodes and verifies a refresh token and returns its
// subject. An access token presented here fails: the refresh marker is
// required, which prevents replaying access tokens through the refresh flow.
func (c *Codec) VerifyRefreshToken(token string) (string, error) {
	claims, err := c.decode(token)
	if err != nil {
		return "", err
	}
	if !claims.Refresh {
		return "", ErrBadCredentials
	}
	return claims.Subject, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(c.alg.method, claims).SignedString(c.alg.signKey)
}

func (c *Codec) decode(token string) (*Claims, error) {
	parsed, err := c.parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return c.alg.verifyKey, nil
	})
	if err != nil {
		return nil, ErrBadCredentials
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrBadCredentials
	}
	return claims, nil
}
