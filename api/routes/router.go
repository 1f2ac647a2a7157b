package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onestoplease/onestoplease-backend/api/controllers"
	authcontrollers "github.com/onestoplease/onestoplease-backend/api/controllers/auth"
	"github.com/onestoplease/onestoplease-backend/api/middleware"
	"github.com/onestoplease/onestoplease-backend/internal/admins"
	"github.com/onestoplease/onestoplease-backend/internal/agents"
	"github.com/onestoplease/onestoplease-backend/internal/auditlog"
	"github.com/onestoplease/onestoplease-backend/internal/auth"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	"github.com/onestoplease/onestoplease-backend/internal/media"
	"github.com/onestoplease/onestoplease-backend/internal/sessions"
	"github.com/onestoplease/onestoplease-backend/pkg/auth/session"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
	"github.com/onestoplease/onestoplease-backend/pkg/redis"
)

// RouterParams gathers everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Storage     db.Pinger
	Sessions    session.AccessSessionChecker
	AgentsRepo  agents.Repository
	Auth        auth.Service
	Register    auth.RegisterService
	AdminSignup auth.AdminRegisterService

	Contributions contributions.Service
	Agents        agents.Service
	Admins        admins.Service
	Attendance    sessions.Service
	Audit         auditlog.Service
	Media         media.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]db.Pinger{
			"database": p.DB,
			"redis":    p.Redis,
			"storage":  p.Storage,
		}))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", authcontrollers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", authcontrollers.AuthRegister(p.Register, p.Auth, logg))
		r.Post("/refresh", authcontrollers.AuthRefresh(p.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, p.Sessions, logg)).
			Post("/logout", authcontrollers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", authcontrollers.AdminAuthRegister(p.AdminSignup, p.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", authcontrollers.AdminAuthLogin(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/contributions", func(r chi.Router) {
			r.Post("/", controllers.ContributionCreate(p.Contributions, logg))
			r.Get("/", controllers.ContributionListMine(p.Contributions, logg))
			r.Get("/{contributionId}", controllers.ContributionGet(p.Contributions, logg))
			r.Delete("/{contributionId}", controllers.ContributionDelete(p.Contributions, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/presign", controllers.MediaPresign(p.Media, logg))
			r.Post("/presign-download", controllers.MediaPresignDownload(p.Media, logg))
		})
	})

	r.Route("/api/agent/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole("agent", logg))
		r.Use(middleware.AgentActivity(p.AgentsRepo, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/queue", controllers.AgentContributionQueue(p.Contributions, logg))
			r.Get("/assigned", controllers.AgentContributionAssigned(p.Contributions, logg))
			r.Get("/{contributionId}", controllers.ContributionGet(p.Contributions, logg))
			r.Post("/{contributionId}/assign", controllers.AgentContributionAssign(p.Contributions, logg))
			r.Post("/{contributionId}/unassign", controllers.AgentContributionUnassign(p.Contributions, logg))
			r.Post("/{contributionId}/approve", controllers.AgentContributionApprove(p.Contributions, logg))
			r.Post("/{contributionId}/reject", controllers.AgentContributionReject(p.Contributions, logg))
		})

		r.Get("/attendance", controllers.AgentAttendanceReport(p.Attendance, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/", controllers.AdminContributionList(p.Contributions, logg))
			r.Get("/{contributionId}", controllers.ContributionGet(p.Contributions, logg))
			r.Post("/{contributionId}/assign", controllers.AdminContributionAssign(p.Contributions, logg))
			r.Post("/{contributionId}/revoke", controllers.AdminContributionRevoke(p.Contributions, logg))
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.AdminAgentList(p.Agents, logg))
			r.Post("/", controllers.AdminAgentCreate(p.Agents, logg))
			r.Delete("/{agentId}", controllers.AdminAgentDelete(p.Agents, logg))
			r.Get("/{agentId}/attendance", controllers.AdminAgentAttendance(p.Agents, p.Attendance, logg))
		})

		r.Route("/admins", func(r chi.Router) {
			r.Get("/", controllers.AdminAdminList(p.Admins, logg))
			r.Post("/", controllers.AdminAdminCreate(p.Admins, logg))
		})

		r.Get("/audit-logs", controllers.AdminAuditLogs(p.Audit, logg))
	})

	return r
}
