package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/jobfeed/internal/api/handler"
	"github.com/cuongbtq/jobfeed/internal/api/router"
	"github.com/cuongbtq/jobfeed/internal/bootstrap"
	"github.com/cuongbtq/jobfeed/internal/config"
	"github.com/cuongbtq/jobfeed/internal/moderation"
	"github.com/cuongbtq/jobfeed/internal/normalizer"
	"github.com/cuongbtq/jobfeed/internal/notify"
	"github.com/cuongbtq/jobfeed/internal/quickpost"
	"github.com/cuongbtq/jobfeed/internal/spam"
	"github.com/cuongbtq/jobfeed/internal/storage"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "jobfeed-api"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	configPath := flag.String("config", config.PathFromEnv("API_CONFIG_PATH", "configs/api-service/config.yaml"), "Path to configuration file")
	issueToken := flag.String("issue-admin-token", "", "Print a moderator token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of an issued token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	authCfg := router.AuthConfig{
		Secret:    cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
		AdminRole: cfg.Auth.AdminRole,
	}

	if *issueToken != "" {
		token, err := router.IssueToken(authCfg, *issueToken, cfg.Auth.AdminRole, *tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(context.Background(), dbClient); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		appLogger.Info("Database schema applied")
	}

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	health := map[string]handler.HealthChecker{
		"database": dbClient,
		"rabbitmq": rabbitClient,
	}

	var rdb *goredis.Client
	redisClient, err := bootstrap.InitRedis(&cfg.Redis, appLogger.Logger)
	if err != nil {
		// rate limiting is optional; the API keeps serving without it
		appLogger.Warn("Redis unavailable, continuing without rate limiting", slog.Any("error", err))
	} else if redisClient != nil {
		defer redisClient.Close()
		rdb = redisClient.GetClient()
		health["redis"] = redisClient
	}

	dispatcher := notify.NewDispatcher(notify.NewQueuePublisher(rabbitClient), cfg.Notify.Timeout, appLogger.Logger)
	defer dispatcher.Wait()

	store := storage.NewPostgresStore(dbClient)
	norm := normalizer.NewNormalizer(&normalizer.Config{Logger: appLogger.Logger})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(&handler.Dependencies{
		Logger:      appLogger.Logger,
		ServiceName: serviceName,
		QuickPosts:  quickpost.NewService(store, norm, spam.NewDefaultScorer(), dispatcher, appLogger.Logger),
		Moderation:  moderation.NewService(store, dispatcher, appLogger.Logger),
		Health:      health,
		Critical:    []string{"database"},
	}, router.Options{
		Auth: authCfg,
		RateLimit: router.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Redis:          rdb,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}
