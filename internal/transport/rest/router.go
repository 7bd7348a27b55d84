package rest

import (
	"log/slog"
	"net/http"

	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/internal/transport/middleware"
)

// loginRateLimit caps credential attempts per IP per minute.
const loginRateLimit = 10

// RouterDeps carries everything the router needs wired in.
type RouterDeps struct {
	Auth     *AuthHandler
	Cases    *CaseHandler
	Workflow *WorkflowHandler
	Report   *ReportHandler
	Catalogs *CatalogHandler
	Health   *HealthHandler

	TokenValidator middleware.TokenValidator
	RateLimiter    *middleware.RateLimiter
	CORS           config.CORSConfig
	Logger         *slog.Logger
}

// NewRouter assembles the HTTP routes with their middleware chains.
// All /api routes sit behind token validation; mutations on the case
// registry additionally require the administrator role.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.Chain(
		middleware.Auth(deps.TokenValidator),
		middleware.RequireAuth(),
	)
	adminOnly := middleware.Chain(
		middleware.Auth(deps.TokenValidator),
		middleware.RequireRole(domain.RoleAdministrator),
	)

	// Probes stay outside the common chain.
	mux.HandleFunc("GET /live", deps.Health.Live)
	mux.HandleFunc("GET /ready", deps.Health.Ready)
	mux.HandleFunc("GET /health", deps.Health.Health)

	mux.Handle("POST /api/auth/login",
		deps.RateLimiter.Limit(loginRateLimit)(http.HandlerFunc(deps.Auth.Login)))

	// Case registry. The literal /api/casos/... routes must be registered
	// alongside the {id} patterns; the mux prefers the more specific ones.
	mux.Handle("GET /api/casos", authed(http.HandlerFunc(deps.Cases.List)))
	mux.Handle("GET /api/casos/{id}", authed(http.HandlerFunc(deps.Cases.Get)))
	mux.Handle("POST /api/casos", adminOnly(http.HandlerFunc(deps.Cases.Create)))
	mux.Handle("PUT /api/casos/{id}", adminOnly(http.HandlerFunc(deps.Cases.Update)))
	mux.Handle("DELETE /api/casos/{id}", adminOnly(http.HandlerFunc(deps.Cases.Delete)))

	// Workflow.
	mux.Handle("POST /api/casos/asignar-fiscal", authed(http.HandlerFunc(deps.Workflow.Assign)))
	mux.Handle("POST /api/casos/modificar-estado", authed(http.HandlerFunc(deps.Workflow.ChangeState)))
	mux.Handle("GET /api/casos/{id}/historial", authed(http.HandlerFunc(deps.Workflow.Timeline)))

	// Dashboard and export.
	mux.Handle("GET /api/casos/resumen", authed(http.HandlerFunc(deps.Cases.Summary)))
	mux.Handle("GET /api/casos/reporte", authed(http.HandlerFunc(deps.Report.Generate)))

	// Audit log search.
	mux.Handle("GET /api/logs/{tabla}/{identificador}", authed(http.HandlerFunc(deps.Cases.SearchLogs)))

	// Reference catalogs.
	mux.Handle("GET /api/fiscales", authed(http.HandlerFunc(deps.Catalogs.Prosecutors)))
	mux.Handle("GET /api/fiscalias", authed(http.HandlerFunc(deps.Catalogs.Offices)))
	mux.Handle("GET /api/estados", authed(http.HandlerFunc(deps.Catalogs.States)))
	mux.Handle("GET /api/tipos", authed(http.HandlerFunc(deps.Catalogs.Types)))

	return middleware.Chain(
		middleware.RequestID,
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.CORS(deps.CORS),
	)(mux)
}
