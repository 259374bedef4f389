package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/service"
	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService     *service.TokenService
	UserService      *service.UserService
	HeartbeatService *service.HeartbeatService

	// CredentialLimit applies per client IP to register and login.
	CredentialLimit httpx.RateLimitConfig
	// LenientLimit applies per client IP to the health endpoints.
	LenientLimit httpx.RateLimitConfig

	// CORS is applied to every route; the zero value disables it.
	CORS httpx.CORSConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:             http.NewServeMux(),
		verifier:        verifier,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
		CredentialLimit: httpx.CredentialLimit,
		LenientLimit:    httpx.LenientLimit,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.middlewares = append(r.middlewares, httpx.CORS(r.CORS))

	r.registerAuth()
	r.registerUsers()
	r.registerTask()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn returns the bearer token check for routes that accept typ. An
// empty typ accepts either token.
func (r *Router) authn(typ jwtx.TokenType) httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.TokenService, typ)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		TokenService: r.TokenService,
		UserService:  r.UserService,
	}

	// Credential endpoints are strictly limited by IP to slow brute force.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.CredentialLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.CredentialLimit),
		),
	)

	r.Mux.Handle("GET /auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.authn(jwtx.TokenTypeRefresh),
		),
	)

	// Logout takes either token of the pair.
	r.Mux.Handle("GET /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.authn(""),
		),
	)

	r.Mux.Handle("GET /auth/user",
		httpx.Chain(http.HandlerFunc(h.HandleUser),
			r.authn(jwtx.TokenTypeAccess),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// The token's role snapshot is only a first gate, the handler checks
	// the stored user.
	r.Mux.Handle("GET /users/all",
		httpx.Chain(h,
			r.authn(jwtx.TokenTypeAccess),
			httpx.RequireRole(domain.RoleAdmin),
		),
	)
}

func (r *Router) registerTask() {
	h := &TaskHandler{HeartbeatService: r.HeartbeatService}

	// Task control is limited per user rather than per IP.
	r.Mux.Handle("GET /start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.authn(jwtx.TokenTypeAccess),
			httpx.RateLimitByUser(r.LenientLimit),
		),
	)
	r.Mux.Handle("GET /stop",
		httpx.Chain(http.HandlerFunc(h.HandleStop),
			r.authn(jwtx.TokenTypeAccess),
			httpx.RateLimitByUser(r.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /ping",
		httpx.Chain(PingHandler(),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}
