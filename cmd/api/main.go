package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/crediplus/crediplus-api/docs" // Swagger docs
	"github.com/crediplus/crediplus-api/internal/config"
	"github.com/crediplus/crediplus-api/internal/database"
	"github.com/crediplus/crediplus-api/internal/handlers"
	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/middleware"
	"github.com/crediplus/crediplus-api/internal/registry"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/services"
	"github.com/crediplus/crediplus-api/internal/storage"
	"github.com/crediplus/crediplus-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title CrediPlus API
// @version 1.0
// @description REST API for CrediPlus Early Loan Repayment Management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@crediplus.app

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8081
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// External registries (deposit slips + receipt checks)
	var slips registry.SlipSource = registry.NewSlipRegistry(cfg.SlipRegistryURL, cfg.SlipRegistryToken)
	receipts := registry.NewPaymentRegistry(cfg.PaymentRegistryURL, cfg.PaymentRegistryToken)

	// Cache the slip registry behind Redis when configured; the registry
	// endpoint is slow and slips only change a few times per hour.
	var slipCache *registry.CachedSlipSource
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		slipCache = registry.NewCachedSlipSource(slips, rdb, cfg.SlipCacheTTL)
		slips = slipCache
		logger.Info("Deposit-slip cache enabled", "ttl", cfg.SlipCacheTTL)
	}

	// Initialize the statement archive
	archive, err := storage.NewArchive(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize statement archive", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized statement archive", "path", cfg.StoragePath)

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, slips, receipts, worker, archive, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, slipCache)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, repos)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// Loan registration (admin only)
				admin.POST("/loans", h.Loan.Create)

				// Settlement decisions (admin only)
				admin.POST("/settlements/:settlement_id/approve", h.Settlement.Approve)
				admin.POST("/settlements/:settlement_id/reject", h.Settlement.Reject)
				admin.POST("/settlements/:settlement_id/cancel", h.Settlement.Cancel)
				admin.POST("/settlements/:settlement_id/process", h.Settlement.Process)

				// Audit logs (admin only)
				admin.GET("/audit_logs", h.Audit.Index)
			}

			// Loans (agents and admins)
			loans := protected.Group("/loans")
			{
				loans.GET("", h.Loan.Index)
				loans.GET("/:loan_id", h.Loan.Show)
				loans.GET("/:loan_id/schedule", h.Loan.Schedule)
				loans.GET("/:loan_id/ledger", h.Loan.Ledger)
			}

			// Settlement requests (agents and admins)
			// Static routes first so "calculate" is not matched as :settlement_id
			settlements := protected.Group("/settlements")
			{
				settlements.POST("/calculate", h.Settlement.Calculate)
				settlements.GET("/stats", h.Settlement.GetStats)
				settlements.GET("/export", h.Settlement.Export)
				settlements.POST("", h.Settlement.Create)
				settlements.GET("", h.Settlement.Index)
				settlements.GET("/:settlement_id", h.Settlement.Show)
				settlements.PATCH("/:settlement_id", h.Settlement.Update)
				settlements.POST("/:settlement_id/verify-slip", h.Settlement.VerifySlip)
				settlements.GET("/:settlement_id/verifications", h.Settlement.Verifications)
				settlements.GET("/:settlement_id/statement", h.Settlement.Statement)
			}

			// Notifications (users can manage their own notifications)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.PUT("/:notification_id", h.Notification.Update)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, slipCache *registry.CachedSlipSource) {
	// Accrue late-payment penalties on overdue installments once a day
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Accruing overdue penalties...")
		return svcs.Penalty.AccrueOverduePenalties(ctx)
	})

	// Keep the deposit-slip cache warm so verification stays fast
	if slipCache != nil {
		worker.ScheduleEveryImmediate(15*time.Minute, func(ctx context.Context) error {
			logger.Info("[Job] Refreshing deposit-slip cache...")
			return slipCache.Refresh(ctx)
		})
	}

	logger.Info("Scheduled recurring jobs")
}
