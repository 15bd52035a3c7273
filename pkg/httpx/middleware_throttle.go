package httpx

import (
	"net/http"

	"github.com/plshark/userauth/pkg/slogx"
	"github.com/plshark/userauth/pkg/throttle"
)

// RateLimitMiddleware rejects requests from client IPs that exceed the
// request limiter's cap. Rejections use the one uniform 429 body.
func RateLimitMiddleware(limiter *throttle.RequestLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !limiter.Admit(ip) {
				slogx.FromContext(r.Context()).Warn("request rate limit exceeded",
					"client_ip", ip,
					"path", r.URL.Path)
				WriteTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginThrottleMiddleware guards a login endpoint. Before the handler runs it
// rejects callers whose username or IP is blocked, and afterwards it records
// a failed attempt whenever the handler answered 401 or 403. The username is
// taken from the unverified credentials; that is fine for throttling since a
// forged username only throttles the name the attacker chose to burn.
func LoginThrottleMiddleware(t *throttle.LoginThrottle, extractUsername UsernameExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := extractUsername(r)
			ip := ClientIP(r)

			if t.IsUsernameBlocked(username) || t.IsIPBlocked(ip) {
				slogx.FromContext(r.Context()).Warn("login attempt while blocked",
					"username", username,
					"client_ip", ip)
				WriteTooManyRequests(w)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusUnauthorized || rec.status == http.StatusForbidden {
				t.OnLoginFailed(username, ip)
			}
		})
	}
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
