package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plshark/userauth/pkg/httpx"
	"github.com/plshark/userauth/pkg/throttle"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func unauthorizedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteUnauthorized(w)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("rejects once the cap is reached", func(t *testing.T) {
		limiter := throttle.NewRequestLimiter(3, time.Minute)
		handler := httpx.RateLimitMiddleware(limiter)(okHandler())

		for i := range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1000"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.JSONEq(t, `{"error":"rate_limit_exceeded"}`, rec.Body.String())
	})

	t.Run("other IPs are unaffected", func(t *testing.T) {
		limiter := throttle.NewRequestLimiter(1, time.Minute)
		handler := httpx.RateLimitMiddleware(limiter)(okHandler())

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.RemoteAddr = "10.0.0.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		blocked := httptest.NewRequest(http.MethodGet, "/", nil)
		blocked.RemoteAddr = "10.0.0.1:1001"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, blocked)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := httptest.NewRequest(http.MethodGet, "/", nil)
		other.RemoteAddr = "10.0.0.2:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoginThrottleMiddleware(t *testing.T) {
	alwaysAlice := func(*http.Request) string { return "alice" }

	t.Run("records failures observed from the handler", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(2, time.Minute)
		handler := httpx.LoginThrottleMiddleware(lt, alwaysAlice)(unauthorizedHandler())

		// Three failed logins cross the limit of two.
		for range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth", nil)
			req.RemoteAddr = "10.0.0.1:1000"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.JSONEq(t, `{"error":"rate_limit_exceeded"}`, rec.Body.String())
	})

	t.Run("successful responses are not counted", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(1, time.Minute)
		handler := httpx.LoginThrottleMiddleware(lt, alwaysAlice)(okHandler())

		for range 10 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth", nil)
			req.RemoteAddr = "10.0.0.1:1000"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
		require.False(t, lt.IsUsernameBlocked("alice"))
	})

	t.Run("blocked IP is rejected even with a fresh username", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(0, time.Minute)
		failing := httpx.LoginThrottleMiddleware(lt, alwaysAlice)(unauthorizedHandler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		failing.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		fresh := httpx.LoginThrottleMiddleware(lt, func(*http.Request) string { return "bob" })(okHandler())
		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "10.0.0.1:2000"
		fresh.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("forbidden counts as a failure too", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(0, time.Minute)
		forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		handler := httpx.LoginThrottleMiddleware(lt, alwaysAlice)(forbidden)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)

		require.True(t, lt.IsUsernameBlocked("alice"))
	})
}
