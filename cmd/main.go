package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	grpcrouter "github.com/dtroode/villa-auth/internal/api/grpc/router"
	grpcserver "github.com/dtroode/villa-auth/internal/api/grpc/server"
	httpctx "github.com/dtroode/villa-auth/internal/api/http/context"
	"github.com/dtroode/villa-auth/internal/api/http/middleware"
	httprouter "github.com/dtroode/villa-auth/internal/api/http/router"
	httpserver "github.com/dtroode/villa-auth/internal/api/http/server"
	"github.com/dtroode/villa-auth/internal/audit"
	"github.com/dtroode/villa-auth/internal/config"
	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/ratelimit"
	"github.com/dtroode/villa-auth/internal/repository/postgres"
	"github.com/dtroode/villa-auth/internal/server"
	"github.com/dtroode/villa-auth/internal/service"
	storage "github.com/dtroode/villa-auth/internal/storage/minio"
	"github.com/dtroode/villa-auth/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	logAppVersion()

	hub := initSentry(cfg, logger)
	if hub != nil {
		defer sentry.Flush(2 * time.Second)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)

	credentials, err := service.NewCredentials(userRepo, bcrypt.DefaultCost, logger)
	if err != nil {
		logger.Fatal("failed to initialize credentials", "error", err)
	}

	reporter := audit.NewReporter(hub, logger)
	codec := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	tokenService := service.NewTokenService(codec, refreshTokenRepo, credentials, reporter, logger, service.TokenConfig{
		AccessTTL:      cfg.JWT.AccessTTL,
		RefreshTTL:     cfg.JWT.RefreshTTL,
		MismatchPolicy: service.MismatchPolicy(cfg.Token.MismatchPolicy),
	})

	limiter, closeLimiter := newLoginLimiter(cfg, logger)
	defer closeLimiter()

	authService := service.NewAuth(credentials, tokenService, limiter, reporter, logger)

	health := service.NewHealth(db, cfg.Health.Interval, logger.With("component", "health"))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		health.Run(ctx)
	}()

	if cfg.Sweep.Interval > 0 {
		sweeper := service.NewSweeper(refreshTokenRepo, newArchive(ctx, cfg, logger), logger.With("component", "sweeper"), service.SweeperConfig{
			Interval:  cfg.Sweep.Interval,
			Retention: cfg.Sweep.Retention,
			BatchSize: cfg.Sweep.BatchSize,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()
	}

	app := httprouter.New(authService, tokenService, health, httpctx.NewManager(), middleware.AuthenticateConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, logger.With("component", "http")).Register()
	httpSrv := httpserver.NewHTTPServer(app, cfg.HTTP.Address)

	grpcSrv := grpcserver.NewGRPCServer(
		grpcrouter.New(health, logger.With("component", "grpc")).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)

	servers := []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{
		{httpSrv, server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)},
		{grpcSrv, server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
	}

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.srv, s.sl)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.srv.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// initSentry returns nil when no DSN is configured.
func initSentry(cfg *config.Config, logger *logger.Logger) *sentry.Hub {
	if cfg.Sentry.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          buildVersion,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		logger.Error("sentry init failed", "error", err)
		return nil
	}

	return sentry.CurrentHub()
}

// newLoginLimiter returns a nil limiter when redis is not configured.
func newLoginLimiter(cfg *config.Config, logger *logger.Logger) (model.LoginLimiter, func()) {
	if cfg.Redis.Address == "" {
		logger.Info("login limiter disabled")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	limiter := ratelimit.New(client, ratelimit.Config{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      cfg.Login.Window,
	})

	return limiter, func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
}

// newArchive returns nil when no object storage is configured.
func newArchive(ctx context.Context, cfg *config.Config, logger *logger.Logger) model.Storage {
	if cfg.Storage.Endpoint == "" {
		return nil
	}

	client, err := storage.Connect(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	return client
}
