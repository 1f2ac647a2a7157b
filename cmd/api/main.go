package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/onestoplease/onestoplease-backend/api/routes"
	"github.com/onestoplease/onestoplease-backend/internal/admins"
	"github.com/onestoplease/onestoplease-backend/internal/agents"
	"github.com/onestoplease/onestoplease-backend/internal/auditlog"
	"github.com/onestoplease/onestoplease-backend/internal/auth"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	"github.com/onestoplease/onestoplease-backend/internal/media"
	"github.com/onestoplease/onestoplease-backend/internal/sessions"
	"github.com/onestoplease/onestoplease-backend/internal/users"
	"github.com/onestoplease/onestoplease-backend/pkg/auth/session"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db"
	"github.com/onestoplease/onestoplease-backend/pkg/instance"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
	"github.com/onestoplease/onestoplease-backend/pkg/migrate"
	"github.com/onestoplease/onestoplease-backend/pkg/outbox"
	"github.com/onestoplease/onestoplease-backend/pkg/redis"
	"github.com/onestoplease/onestoplease-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	agentsRepo := agents.NewRepository(gormDB)
	adminsRepo := admins.NewRepository(gormDB)
	sessionsRepo := sessions.NewRepository(gormDB)
	auditRepo := auditlog.NewRepository(gormDB)
	contributionsRepo := contributions.NewRepository(gormDB)

	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	auditWriter, err := auditlog.NewWriter(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit writer", err)
		os.Exit(1)
	}
	auditService, err := auditlog.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	agentsService, err := agents.NewService(agents.ServiceParams{
		Repo:           agentsRepo,
		TX:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}

	adminsService, err := admins.NewService(admins.ServiceParams{
		Repo:           adminsRepo,
		TX:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admins service", err)
		os.Exit(1)
	}

	sessionsService, err := sessions.NewService(sessionsRepo, dbClient, outboxService, time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create sessions service", err)
		os.Exit(1)
	}

	contributionsService, err := contributions.NewService(contributionsRepo, dbClient, auditWriter, outboxService, agentsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create contributions service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.GCS, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Agents:         agentsService,
		AgentPresence:  agentsRepo,
		Attendance:     sessionsService,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TX:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		TX:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Storage:     gcsClient,
		Sessions:    sessionManager,
		AgentsRepo:  agentsRepo,
		Auth:        authService,
		Register:    registerService,
		AdminSignup: adminRegisterService,

		Contributions: contributionsService,
		Agents:        agentsService,
		Admins:        adminsService,
		Attendance:    sessionsService,
		Audit:         auditService,
		Media:         mediaService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
		}
	}
}
