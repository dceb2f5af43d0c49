package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/jordanwu/asset-compliance/internal/ai"
	"github.com/jordanwu/asset-compliance/internal/automation"
	"github.com/jordanwu/asset-compliance/internal/backup"
	"github.com/jordanwu/asset-compliance/internal/config"
	"github.com/jordanwu/asset-compliance/internal/httpapi"
	"github.com/jordanwu/asset-compliance/internal/repository"
	"github.com/jordanwu/asset-compliance/pkg/database"
	"github.com/jordanwu/asset-compliance/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting asset compliance service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	signalRepo := repository.NewSignalRepository(db.DB, logger)
	scoreRepo := repository.NewRiskScoreRepository(db.DB, logger)
	runRepo := repository.NewRunRepository(db.DB, logger)
	recRepo := repository.NewRecommendationRepository(db.DB, logger)
	taskRepo := repository.NewTaskRepository(db.DB, logger)
	assignmentRepo := repository.NewAssignmentRepository(db.DB, logger)
	verificationRepo := repository.NewVerificationRepository(db.DB, logger)
	assetRepo := repository.NewAssetRepository(db.DB, logger)
	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)

	// Reasoning backend
	reasoner := ai.NewReasoner(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)

	// Pipeline components
	retry := &automation.RetryStrategy{
		MaxRetries:  cfg.Automation.RetryMaxAttempts,
		BaseBackoff: cfg.Automation.RetryBaseBackoff,
		MaxBackoff:  cfg.Automation.RetryMaxBackoff,
	}
	recommender := automation.NewRecommendationGenerator(
		reasoner, retry, ai.IsRetryable, cfg.OpenAI.MaxTokens, logger)
	taskgen := automation.NewTaskGenerator()

	orchestrator := automation.NewOrchestrator(
		signalRepo,
		scoreRepo,
		runRepo,
		recRepo,
		taskRepo,
		assignmentRepo,
		assetRepo,
		employeeRepo,
		automation.NewRiskScoringEngine(),
		recommender,
		taskgen,
		automation.NewAssignmentOptimizer(),
		automation.OrchestratorConfig{
			MaxRecommendations: cfg.Automation.MaxRecommendations,
			MaxAssignments:     cfg.Automation.MaxAssignments,
		},
		logger,
	)

	insights := automation.NewInsightsService(scoreRepo, assetRepo, logger)

	verifier := backup.NewVerifier(
		assetRepo,
		verificationRepo,
		signalRepo,
		taskRepo,
		backup.NewSimulatedChecker(),
		taskgen,
		cfg.Backup.VerificationInterval,
		logger,
	)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	handlers := httpapi.NewHandlers(orchestrator, insights, verifier, logger)
	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
