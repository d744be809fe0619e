package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/dao"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/notification"
	"github.com/docushare/share-management-api/internal/router"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/worker"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Share Management API Server...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	config.SetGlobal(cfg)

	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Shares, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	// Initialize DAOs
	policyDAO := dao.NewApprovalPolicyDAO(db)
	settingsDAO := dao.NewApprovalSettingsDAO(db)
	requestDAO := dao.NewApprovalRequestDAO(db)
	decisionDAO := dao.NewApprovalDecisionDAO(db)
	historyDAO := dao.NewApprovalHistoryDAO(db)
	shareDAO := dao.NewDocumentShareDAO(db)
	documentDAO := dao.NewDocumentDAO(db)
	userDAO := dao.NewUserDAO(db)
	outboxDAO := dao.NewOutboxDAO(db)

	logger.Info("DAOs initialized successfully")

	// Initialize services
	policyService := service.NewApprovalPolicyService(policyDAO, documentDAO, cfg, logger)
	settingsService := service.NewApprovalSettingsService(settingsDAO, cfg, logger)
	requestService := service.NewApprovalRequestService(
		requestDAO,
		decisionDAO,
		historyDAO,
		shareDAO,
		policyDAO,
		documentDAO,
		userDAO,
		outboxDAO,
		db,
		cfg,
		logger,
	)
	shareService := service.NewDocumentShareService(
		shareDAO,
		documentDAO,
		outboxDAO,
		policyService,
		settingsService,
		requestService,
		db,
		cfg,
		logger,
	)

	logger.Info("Services initialized successfully")

	// Bootstrap the built-in fallback policy and the settings row
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := policyService.EnsureGlobalSystemPolicy(bootstrapCtx); err != nil {
		bootstrapCancel()
		logger.WithError(err).Fatal("Failed to bootstrap Global System Policy")
	}
	if _, err := settingsService.GetCurrentSettings(bootstrapCtx); err != nil {
		bootstrapCancel()
		logger.WithError(err).Fatal("Failed to bootstrap approval settings")
	}
	bootstrapCancel()

	// Start background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	sweeper := worker.NewExpirySweeper(cfg.Sweeper, requestService, logger)
	sweeper.Start(workerCtx)

	var dispatcher *notification.Dispatcher
	if cfg.Notification.Enabled {
		dispatcher = notification.NewDispatcher(
			outboxDAO,
			userDAO,
			settingsService,
			notification.NewLogEmailSender(logger),
			notification.NewLogEventPublisher(logger),
			cfg.Notification,
			logger,
		)
		dispatcher.Start(workerCtx)
	}

	// Setup router
	ginRouter := router.SetupRouter(shareService, requestService, policyService, settingsService)

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("✓ Server is running")
	logger.Info("Press Ctrl+C to stop the server")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	// Stop background workers after the HTTP surface is drained
	if err := sweeper.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Expiry sweeper did not stop cleanly")
	}
	if dispatcher != nil {
		dispatcher.Stop()
	}

	logger.Info("Server exited gracefully")
}
