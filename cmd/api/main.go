package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/auth"
	"github.com/isaackcz/Edsight-sub000/internal/config"
	"github.com/isaackcz/Edsight-sub000/internal/database"
	"github.com/isaackcz/Edsight-sub000/internal/handlers"
	"github.com/isaackcz/Edsight-sub000/internal/logger"
	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/scheduler"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/internal/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	if err := db.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	geoRepo := repository.NewGeoRepository(db.DB)
	periodRepo := repository.NewPeriodRepository(db.DB)
	submissionRepo := repository.NewSubmissionRepository(db.DB)
	responseRepo := repository.NewResponseRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(adminRepo, sessionRepo, authService, &cfg.JWT)
	scopeSvc := service.NewScopeService(geoRepo)
	engine := workflow.NewEngine(submissionRepo)
	adminSvc := service.NewAdminService(adminRepo, scopeSvc, authService, auditSvc)
	geoSvc := service.NewGeoService(geoRepo, scopeSvc, auditSvc)
	periodSvc := service.NewPeriodService(periodRepo, auditSvc)
	submissionSvc := service.NewSubmissionService(submissionRepo, responseRepo, periodRepo, scopeSvc, engine, auditSvc)
	reportSvc := service.NewReportService(questionRepo, responseRepo, submissionRepo, periodRepo, scopeSvc)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(authSvc, periodRepo, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, adminRepo, sessionRepo, cfg.Session.Timeout)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditMw := middleware.NewAuditMiddleware(db.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc)
	geoHandler := handlers.NewGeoHandler(geoSvc)
	submissionHandler := handlers.NewSubmissionHandler(submissionSvc)
	periodHandler := handlers.NewPeriodHandler(periodSvc)
	reportHandler := handlers.NewReportHandler(reportSvc)
	auditHandler := handlers.NewAuditHandler(auditSvc)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, authSvc)
	configHandler := handlers.NewConfigHandler(cfg)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.Handle("POST /api/v1/auth/login",
		auditMw.Log("auth.login", "auth", "login attempt")(
			http.HandlerFunc(authHandler.Login),
		),
	)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /api/v1/auth/logout",
		auditMw.Log("auth.logout", "auth", "logout")(
			http.HandlerFunc(authHandler.Logout),
		),
	)

	// Config routes (public)
	mux.HandleFunc("GET /api/v1/config/app", configHandler.GetAppConfig)

	// Protected routes
	mux.Handle("GET /api/v1/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/v1/auth/sessions", authMw.Authenticate(http.HandlerFunc(sessionHandler.GetMySessions)))
	mux.Handle("DELETE /api/v1/auth/sessions", authMw.Authenticate(http.HandlerFunc(sessionHandler.DeleteAllMySessions)))

	// Administrator management
	mux.Handle("POST /api/v1/admins",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapCreateAdmins)(
				http.HandlerFunc(adminHandler.Create),
			),
		),
	)
	mux.Handle("GET /api/v1/admins",
		authMw.Authenticate(
			middleware.RequireAnyCapability(permission.CapCreateAdmins, permission.CapManageAdmins)(
				http.HandlerFunc(adminHandler.List),
			),
		),
	)
	mux.Handle("GET /api/v1/admins/{id}",
		authMw.Authenticate(
			middleware.RequireAnyCapability(permission.CapCreateAdmins, permission.CapManageAdmins)(
				http.HandlerFunc(adminHandler.Get),
			),
		),
	)
	mux.Handle("PUT /api/v1/admins/{id}",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapManageAdmins)(
				http.HandlerFunc(adminHandler.Update),
			),
		),
	)
	mux.Handle("PUT /api/v1/admins/{id}/status",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapManageAdmins)(
				http.HandlerFunc(adminHandler.SetStatus),
			),
		),
	)
	mux.Handle("PUT /api/v1/admins/{id}/password",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapManageAdmins)(
				http.HandlerFunc(adminHandler.ResetPassword),
			),
		),
	)

	// Geographic hierarchy
	mux.Handle("GET /api/v1/geo/regions", authMw.Authenticate(http.HandlerFunc(geoHandler.ListRegions)))
	mux.Handle("GET /api/v1/geo/divisions", authMw.Authenticate(http.HandlerFunc(geoHandler.ListDivisions)))
	mux.Handle("GET /api/v1/geo/districts", authMw.Authenticate(http.HandlerFunc(geoHandler.ListDistricts)))
	mux.Handle("GET /api/v1/geo/units", authMw.Authenticate(http.HandlerFunc(geoHandler.ListUnits)))
	mux.Handle("POST /api/v1/geo/nodes",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapManageAdmins)(
				http.HandlerFunc(geoHandler.Import),
			),
		),
	)

	// Submissions
	mux.Handle("GET /api/v1/submissions/my", authMw.Authenticate(http.HandlerFunc(submissionHandler.GetMine)))
	mux.Handle("GET /api/v1/submissions", authMw.Authenticate(http.HandlerFunc(submissionHandler.List)))
	mux.Handle("GET /api/v1/submissions/{id}", authMw.Authenticate(http.HandlerFunc(submissionHandler.Get)))
	mux.Handle("POST /api/v1/submissions/{id}/responses", authMw.Authenticate(http.HandlerFunc(submissionHandler.SaveAnswer)))
	mux.Handle("POST /api/v1/submissions/{id}/submit", authMw.Authenticate(http.HandlerFunc(submissionHandler.Submit)))
	mux.Handle("POST /api/v1/submissions/{id}/approve",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapApprove)(
				http.HandlerFunc(submissionHandler.Approve),
			),
		),
	)
	mux.Handle("POST /api/v1/submissions/{id}/return",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapApprove)(
				http.HandlerFunc(submissionHandler.Return),
			),
		),
	)

	// Collection periods
	mux.Handle("GET /api/v1/periods", authMw.Authenticate(http.HandlerFunc(periodHandler.List)))
	mux.Handle("GET /api/v1/periods/active", authMw.Authenticate(http.HandlerFunc(periodHandler.GetActive)))
	mux.Handle("POST /api/v1/periods",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapSetDeadlines)(
				http.HandlerFunc(periodHandler.Create),
			),
		),
	)
	mux.Handle("PUT /api/v1/periods/{id}/deadline",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapSetDeadlines)(
				http.HandlerFunc(periodHandler.SetDeadline),
			),
		),
	)
	mux.Handle("POST /api/v1/periods/{id}/activate",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapSetDeadlines)(
				http.HandlerFunc(periodHandler.Activate),
			),
		),
	)

	// Reports
	mux.Handle("GET /api/v1/reports/completion", authMw.Authenticate(http.HandlerFunc(reportHandler.Completion)))
	mux.Handle("GET /api/v1/reports/status-summary", authMw.Authenticate(http.HandlerFunc(reportHandler.StatusSummary)))

	// Audit logs
	mux.Handle("GET /api/v1/audit-logs",
		authMw.Authenticate(
			middleware.RequireCapability(permission.CapViewLogs)(
				http.HandlerFunc(auditHandler.List),
			),
		),
	)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
				return
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
			return
		}
	})

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
