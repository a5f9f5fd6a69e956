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

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/ai-career-assistant/configs"
	"github.com/avatarctic/ai-career-assistant/internal/application/services"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/db"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/email"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/health"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/httpserver"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/redis"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(&cfg.Log)
	logger.WithFields(logrus.Fields{
		"env":         cfg.Server.Environment,
		"token_store": cfg.Reset.Store,
		"email":       cfg.Email.Provider,
	}).Info("Starting AI Career Assistant password reset service...")

	// Accounts live in postgres regardless of where reset tokens are kept
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()
	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")
	}

	var userRepo ports.UserRepository = repositories.NewUserRepository(database, logger)
	var rateLimiterService ports.RateLimiterService
	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	if redisClient != nil {
		redisCache := redis.NewRedisCache(redisClient, "appcache")
		userRepo = repositories.NewCachingUserRepository(userRepo, redisCache, cfg.Redis.UserCacheTTL)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))

		if cfg.RateLimit.Enabled {
			rateLimiterService = services.NewRateLimiterService(
				repositories.NewRateLimitRedisRepository(redisClient),
				&services.RateLimiterConfig{
					RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
					Window:            cfg.RateLimit.Window,
					KeyPrefix:         cfg.RateLimit.KeyPrefix,
				},
				logger,
			)
		}
	}

	var resetTokens ports.ResetTokenRepository
	switch cfg.Reset.Store {
	case "redis":
		resetTokens = repositories.NewResetTokenRedisRepository(redisClient, logger)
	case "postgres":
		resetTokens = repositories.NewResetTokenDBRepository(database, logger)
	default:
		logger.Warn("Reset tokens are kept in memory and will not survive a restart")
		resetTokens = repositories.NewResetTokenMemoryRepository(logger)
	}
	hcSlice = append(hcSlice, health.NewResetTokenStoreChecker(resetTokens, cfg.Reset.Store))

	sender, err := email.NewSender(context.Background(), &cfg.Email, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email sender:", err)
	}
	emailService, err := email.NewEmailService(sender, cfg.Email.CompanyName, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}
	dispatcher := email.NewDispatcher(emailService, email.DispatcherConfig{
		QueueSize:   cfg.Email.QueueSize,
		Workers:     cfg.Email.Workers,
		SendTimeout: cfg.Email.SendTimeout,
	}, logger)

	auditService := services.NewAuditService(repositories.NewAuditRepository(database, logger), logger)

	baseURL := cfg.Server.BaseURL()
	passwordResetService := services.NewPasswordResetService(resetTokens, userRepo, dispatcher, auditService, baseURL, logger)
	logger.WithField("base_url", baseURL).Info("Reset links resolved")

	janitor := services.NewTokenJanitor(resetTokens, cfg.Reset.CleanupInterval, logger)
	janitor.Start()

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
		DebugEndpoints: cfg.Debug.EndpointsEnabled,
		DebugJWTSecret: cfg.Debug.JWTSecret,
		TrustedProxies: cfg.Server.TrustedProxies,
	}

	deps := httpserver.ServerDeps{
		PasswordResetService: passwordResetService,
		ResetTokens:          resetTokens,
		RateLimiterService:   rateLimiterService,
		HealthCheckers:       hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}
	janitor.Stop()
	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn("Pending reset emails were not delivered:", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}
