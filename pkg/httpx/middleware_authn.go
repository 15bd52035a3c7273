package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/plshark/userauth/pkg/jwtx"
	"github.com/plshark/userauth/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and injects the caller's username
// and authorities into the request context. Every failure gets the same 401;
// the reason only goes to the log.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				WriteUnauthorized(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			user, err := v.VerifyToken(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				WriteUnauthorized(w)
				return
			}

			ctx = contextWithAuth(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, user jwtx.UserAuthorities) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUsername, user.Username)
	ctx = context.WithValue(ctx, CtxKeyAuthorities, user.Authorities)
	return ctx
}
