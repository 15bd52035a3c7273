package throttle

import (
	"log/slog"
	"time"
)

// Login throttling defaults.
const (
	DefaultMaxLoginAttempts = 10
	DefaultLoginWindow      = 8 * time.Hour
)

// LoginThrottle tracks failed login attempts per username and per client IP in
// two independent counters. A key is blocked once its failures exceed the
// maximum; the block clears on its own when the counter's window expires.
// Successful logins never reset a counter, so an attacker interleaving valid
// logins with guesses still gets locked out.
type LoginThrottle struct {
	usernames   *CounterCache
	ips         *CounterCache
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle returns a throttle blocking a username or IP after more
// than maxAttempts failures within window.
func NewLoginThrottle(maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		usernames:   NewCounterCache(window),
		ips:         NewCounterCache(window),
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// OnLoginFailed records one failed attempt against both the username and the
// client IP. Empty keys are counted too; an unresolvable IP still shares one
// bucket.
func (t *LoginThrottle) OnLoginFailed(username, clientIP string) {
	if n := t.usernames.Increment(username); n == t.maxAttempts+1 {
		slog.Warn("blocking login attempts for username",
			"username", username,
			"window", t.window)
	}
	if n := t.ips.Increment(clientIP); n == t.maxAttempts+1 {
		slog.Warn("blocking login attempts for client IP",
			"client_ip", clientIP,
			"window", t.window)
	}
}

// IsUsernameBlocked reports whether the username has exceeded the maximum
// failed attempts. Checking never extends the block.
func (t *LoginThrottle) IsUsernameBlocked(username string) bool {
	return t.usernames.Peek(username) > t.maxAttempts
}

// IsIPBlocked reports whether the client IP has exceeded the maximum failed
// attempts.
func (t *LoginThrottle) IsIPBlocked(clientIP string) bool {
	return t.ips.Peek(clientIP) > t.maxAttempts
}
