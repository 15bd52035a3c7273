package httpx

import "context"

type ctxKey string

const (
	CtxKeyUsername    ctxKey = "username"
	CtxKeyAuthorities ctxKey = "authorities"
)

// UsernameFromContext returns the authenticated username, or "" when the
// request did not pass through AuthnMiddleware.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUsername).(string); ok {
		return v
	}
	return ""
}

func authoritiesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAuthorities).([]string); ok {
		return v
	}
	return nil
}
