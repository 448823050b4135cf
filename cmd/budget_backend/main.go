package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/services"
	"github.com/SscSPs/construction_budget_app/internal/handlers"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/SscSPs/construction_budget_app/internal/platform/config"
	"github.com/SscSPs/construction_budget_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/construction_budget_app/internal/scheduler"
	"github.com/SscSPs/construction_budget_app/internal/utils"
	"github.com/SscSPs/construction_budget_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// @title Construction Budget API
// @version 1.0
// @description Project budgets, transactions and recurring transaction templates.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool, logger)

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repos, clock)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	generationLimiter, err := middleware.NewMemoryRateLimiter(cfg.GenerationRateLimit)
	if err != nil {
		logger.Error("Invalid generation rate limit", slog.String("rate", cfg.GenerationRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	var jobs *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		jobs = scheduler.New(logger,
			scheduler.NewRunner(scheduler.RecurringGenerationJob{Generator: serviceContainer.Generator}, clock, cfg.SchedulerInterval, cfg.SchedulerRetryBackoff, logger),
			scheduler.NewRunner(scheduler.ContractRenewalJob{Renewal: serviceContainer.Renewal}, clock, cfg.SchedulerInterval, cfg.SchedulerRetryBackoff, logger),
		)
		jobs.Start(ctx)
	} else {
		logger.Info("Scheduler disabled; recurring transactions are only generated on demand")
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware. Analytics are attached to the API group in RegisterRoutes.
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, generationLimiter, posthogClient)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SchedulerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if jobs != nil {
		if err := jobs.Shutdown(cfg.SchedulerShutdownTimeout); err != nil {
			logger.Error("Scheduler shutdown failed", slog.String("error", err.Error()))
		}
	}
	logger.Info("Server stopped")
}
