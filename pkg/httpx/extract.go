package httpx

import (
	"encoding/base64"
	"net"
	"net/http"
	"strings"

	"github.com/plshark/userauth/pkg/jwtx"
)

// ClientIP returns the caller's IP: the first X-Forwarded-For entry when the
// request came through a proxy, otherwise the host part of RemoteAddr. It
// returns "" rather than failing, so unresolvable callers all land in one
// throttle bucket.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UsernameExtractor pulls the claimed username out of a request's credentials
// before they are verified, for per-username throttling. Extractors never
// fail: anything unparseable yields "".
type UsernameExtractor func(*http.Request) string

// BasicUsernameExtractor reads the username from a Basic Authorization
// header. Malformed encoding or a missing colon yields "".
func BasicUsernameExtractor(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Basic ") {
		return ""
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authz, "Basic "))
	if err != nil {
		return ""
	}

	username, _, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return ""
	}
	return username
}

// BearerUsernameExtractor reads the subject from a bearer token. Verification
// failures yield "" rather than an error; the authn middleware is where bad
// tokens are rejected.
func BearerUsernameExtractor(verifier jwtx.Verifier) UsernameExtractor {
	return func(r *http.Request) string {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			return ""
		}

		user, err := verifier.VerifyToken(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
		if err != nil {
			return ""
		}
		return user.Username
	}
}

// FirstMatch combines extractors, returning the first non-empty username.
func FirstMatch(extractors ...UsernameExtractor) UsernameExtractor {
	return func(r *http.Request) string {
		for _, extract := range extractors {
			if username := extract(r); username != "" {
				return username
			}
		}
		return ""
	}
}
