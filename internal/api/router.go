package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/api/handlers"
	"github.com/nikhilbhutani/agencyhub/internal/api/middleware"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/auth"
	"github.com/nikhilbhutani/agencyhub/internal/cache"
	"github.com/nikhilbhutani/agencyhub/internal/claim"
	"github.com/nikhilbhutani/agencyhub/internal/cleanup"
	"github.com/nikhilbhutani/agencyhub/internal/compliance"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/labor"
	"github.com/nikhilbhutani/agencyhub/internal/profile"
	"github.com/nikhilbhutani/agencyhub/internal/storage"
)

// Store is the full persistence surface the API needs. The Postgres and
// in-memory stores both satisfy it.
type Store interface {
	agency.Store
	claim.Store
	compliance.Store
	labor.Store
	audit.Store
	cleanup.Store
	profile.Store
}

type Notifier interface {
	claim.Notifier
	compliance.Notifier
	labor.Notifier
}

// Deps are the process-level collaborators. DB and Redis may be nil, in which
// case readiness skips that check.
type Deps struct {
	Store     Store
	DB        handlers.Pinger
	Redis     *redis.Client
	Files     storage.Storage
	Notifier  Notifier
	AuthAdmin cleanup.AuthAdmin
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
	rl   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
		rl:   middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))
	r.Use(rt.rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.deps.DB, rt.deps.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	// Initialize services
	st := rt.deps.Store
	auditSvc := audit.NewService(st)
	profileSvc := profile.NewService(st)
	agencySvc := agency.NewService(st, profileSvc, auditSvc, rt.cfg.Agencies)
	claimSvc := claim.NewService(st, rt.deps.Notifier, auditSvc)
	complianceSvc := compliance.NewService(st, rt.deps.Files, cache.NewCache(rt.deps.Redis, "agencyhub:"),
		profileSvc, rt.deps.Notifier, auditSvc, rt.cfg.Storage)
	laborSvc := labor.NewService(st, rt.deps.Notifier)
	cleanupSvc := cleanup.NewService(st, rt.deps.AuthAdmin, auditSvc)

	authMW := auth.NewMiddleware(rt.cfg.Auth.JWTSecret, profileSvc)

	agencyH := handlers.NewAgencyHandler(agencySvc)
	claimH := handlers.NewClaimHandler(claimSvc)
	complianceH := handlers.NewComplianceHandler(complianceSvc, rt.cfg.Storage.MaxUploadBytes)
	laborH := handlers.NewLaborHandler(laborSvc)
	adminH := handlers.NewAdminHandler(auditSvc, cleanupSvc)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Authenticate)

		// Public routes
		r.Get("/agencies", agencyH.PublicList)
		r.Get("/agencies/{slug}", agencyH.GetBySlug)
		r.Post("/labor-requests", laborH.Submit)

		// Signed-in users
		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireUser)
			r.Use(authMW.LoadProfile)

			r.Post("/claims/request", claimH.Submit)
			r.Get("/claims", claimH.ListMine)
			r.Patch("/agencies/{id}/profile", agencyH.UpdateProfile)
			r.Post("/agencies/{id}/compliance/{type}/document", complianceH.Upload)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW.RequireAdmin)

			r.Get("/agencies", agencyH.AdminList)
			r.Post("/agencies", agencyH.Create)
			r.Post("/agencies/{id}/status", agencyH.SetStatus)
			r.Get("/agencies/{id}/compliance", complianceH.Get)
			r.Put("/agencies/{id}/compliance", complianceH.Upsert)
			r.Post("/agencies/{id}/compliance/verify", complianceH.Verify)

			r.Get("/claims", claimH.AdminList)
			r.Post("/claims/{id}/approve", claimH.Approve)
			r.Post("/claims/{id}/reject", claimH.Reject)
			r.Post("/claims/{id}/review", claimH.Review)

			r.Get("/labor-requests", laborH.AdminList)
			r.Get("/audit", adminH.AuditLogs)
			r.Post("/users/cleanup", adminH.CleanupUser)
		})
	})

	return r
}
