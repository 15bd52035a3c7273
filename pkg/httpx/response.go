package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code. It sets the
// Content-Type and Cache-Control headers; token responses must never be
// cached.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteUnauthorized writes the single 401 response used for every
// authentication failure. The body and headers are identical whether the
// user is unknown, the password wrong, or the token invalid, so the response
// leaks nothing about which it was.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "invalid_credentials",
	})
}

// WriteTooManyRequests writes the single 429 response used for every
// throttling decision, with no hint of which limit tripped.
func WriteTooManyRequests(w http.ResponseWriter) {
	WriteJSON(w, http.StatusTooManyRequests, map[string]string{
		"error": "rate_limit_exceeded",
	})
}
