package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-service/internal/middleware"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/memory"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	logger.Info("Configuration loaded", "environment", cfg.Environment, "store", cfg.Store)

	repo, err := openRepository(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Failed to connect to Redis, using in-process cache", "error", err)
		cacheService = cache.NewMemoryCache()
	} else {
		logger.Info("Connected to Redis")
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger.Slog())
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(repo, cacheService, publisher, validator.New(), logger.Slog(), services.Options{
		SubmissionMaxRetries: cfg.SubmissionMaxRetries,
		ProgressCacheTTL:     cfg.ProgressCacheTTL,
	})

	var authenticate gin.HandlerFunc
	switch {
	case cfg.Casdoor.Enabled():
		logger.Info("Verifying bearer tokens with Casdoor", "endpoint", cfg.Casdoor.Endpoint)
		authenticate = middleware.Authenticate(middleware.NewCasdoorParser(cfg.Casdoor), logger)
	case !cfg.IsProduction():
		logger.Warn("Casdoor not configured, trusting X-User-ID and X-User-Role headers")
		authenticate = middleware.DevHeaderAuth()
	default:
		logger.Warn("Casdoor not configured, every request is anonymous")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlers.NewHandlerManager(serviceManager, authenticate, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Quiz service HTTP server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.LogError(err, "HTTP server shutdown failed")
	}
	logger.Info("Quiz service stopped")
}

func openRepository(cfg *config.Config, logger utils.Logger) (repositories.Repository, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewRepository(), nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to PostgreSQL", "auto_migrate", cfg.AutoMigrate)
	return postgres.NewRepository(db), nil
}
