package throttle

import "time"

// Request rate limiting defaults.
const (
	DefaultMaxRequests   = 100
	DefaultRequestWindow = 60 * time.Second
)

// RequestLimiter caps the number of requests a single client IP may make
// within a window. Unlike LoginThrottle it counts every request, successful or
// not, and the decision is made at admission time.
type RequestLimiter struct {
	cache       *CounterCache
	maxRequests int64
}

// NewRequestLimiter returns a limiter admitting up to maxRequests per client
// IP per window.
func NewRequestLimiter(maxRequests int, window time.Duration) *RequestLimiter {
	return &RequestLimiter{
		cache:       NewCounterCache(window),
		maxRequests: int64(maxRequests),
	}
}

// Admit counts the request and reports whether it is within the limit. The
// first request over the cap and every one after it are rejected until the
// window expires.
func (l *RequestLimiter) Admit(clientIP string) bool {
	return l.cache.Increment(clientIP) <= l.maxRequests
}
