package httpx

import "net/http"

// RequireAnyAuthority rejects the request unless the caller holds at least
// one of the listed authorities. Must run after AuthnMiddleware.
func RequireAnyAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, a := range required {
		want[a] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authoritiesFromCtx(r.Context()) {
				if _, ok := want[a]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "insufficient_authority",
			})
		})
	}
}
