package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/mail"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
	} else {
		logger.Warn("using in-memory user repository; accounts are lost on restart")
		userRepo = repository.NewMemoryUserRepository()
	}

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	issuer, err := auth.NewIssuer(codec, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	if err != nil {
		logger.Fatal("failed to init token issuer", zap.Error(err))
	}

	names := auth.CookieNames{Access: cfg.Auth.AccessCookieName, Refresh: cfg.Auth.RefreshCookieName}
	session := auth.NewSessionWriter(cfg.Auth.TokenSink, names, cfg.Auth.CookieSecure)
	onceStore := auth.NewRedisOnceStore(redis.Client, redis.KeyPrefix())

	gateDeps := auth.GateDependencies{
		Issuer:  issuer,
		Source:  auth.NewTokenSource(cfg.Auth.TokenSource, names),
		Session: session,
		Logger:  logger.Named("gate"),
		Metrics: metrics,
	}
	if cfg.Auth.RenewalGuard {
		gateDeps.Guard = onceStore
	}
	gate, err := auth.NewGate(gateDeps)
	if err != nil {
		logger.Fatal("failed to init auth gate", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	mailer := mail.New(cfg.Mail, cfg.App.Name, logger.Named("mail"))
	worker.StartNotificationWorker(dispatcher, mailer, logger.Named("notifications"), cfg.App.Name)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Issuer:     issuer,
		Consumed:   onceStore,
		Dispatcher: dispatcher,
		Logger:     logger.Named("auth"),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	readiness := map[string]handlers.Pinger{"redis": redis}
	if pg.Configured() {
		readiness["postgres"] = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:    handlers.NewAuthHandler(authService, session),
		Users:   handlers.NewUsersHandler(authService),
		Gate:    gate,
		Metrics: metrics,

		RateLimitPerMinute: cfg.Auth.RateLimitPerMinute,
		RateLimitBurst:     cfg.Auth.RateLimitBurst,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
