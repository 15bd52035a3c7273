// Package http wires the service endpoints onto a ServeMux and applies the
// middleware chains.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/plshark/userauth/internal/service"
	"github.com/plshark/userauth/internal/store"
	"github.com/plshark/userauth/pkg/httpx"
	"github.com/plshark/userauth/pkg/jwtx"
	"github.com/plshark/userauth/pkg/slogx"
	"github.com/plshark/userauth/pkg/throttle"

	_ "github.com/plshark/userauth/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	loginThrottle  *throttle.LoginThrottle
	requestLimiter *throttle.RequestLimiter

	AuthService     *service.AuthService
	UserService     *service.UserService
	SettingsService *service.UserAuthSettingsService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	loginThrottle *throttle.LoginThrottle,
	requestLimiter *throttle.RequestLimiter,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		store:          st,
		loginThrottle:  loginThrottle,
		requestLimiter: requestLimiter,
		logger:         logger,
	}

	// Every request passes the logger and the per-IP request limiter.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RateLimitMiddleware(r.requestLimiter),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			User Auth Service API
//	@version		0.1.0
//	@description	Authentication backend issuing JWT access and refresh tokens for a user directory,
//	@description	with per-user token policy and login throttling.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService}

	// Login endpoints count failures per username and per IP. The username
	// comes from the request's own credentials before verification.
	loginGuard := httpx.LoginThrottleMiddleware(r.loginThrottle, httpx.FirstMatch(
		httpx.BasicUsernameExtractor,
		httpx.BearerUsernameExtractor(r.verifier),
		jsonBodyUsernameExtractor,
	))

	r.Mux.Handle("POST /auth",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin), loginGuard))

	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(authHandler.HandleRefresh), loginGuard))

	r.Mux.Handle("POST /auth/validate",
		http.HandlerFunc(authHandler.HandleValidate))
}

func (r *Router) registerUsers() {
	usersHandler := &UsersHandler{
		UserService:     r.UserService,
		SettingsService: r.SettingsService,
	}

	admin := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyAuthority(service.AuthorityUsersAdmin),
	}

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleList), admin...))
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleCreate), admin...))
	r.Mux.Handle("GET /v1/users/{username}",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleGet), admin...))
	r.Mux.Handle("DELETE /v1/users/{username}",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleDelete), admin...))
	r.Mux.Handle("PUT /v1/users/{username}/password",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleChangePassword), admin...))
	r.Mux.Handle("PUT /v1/users/{username}/settings",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleUpdateSettings), admin...))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
