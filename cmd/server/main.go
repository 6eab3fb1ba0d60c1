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

	grpcctx "github.com/dtroode/cacart/internal/api/grpc/context"
	"github.com/dtroode/cacart/internal/api/grpc/router"
	grpcServer "github.com/dtroode/cacart/internal/api/grpc/server"
	"github.com/dtroode/cacart/internal/api/rest"
	"github.com/dtroode/cacart/internal/config"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/observability"
	"github.com/dtroode/cacart/internal/password"
	"github.com/dtroode/cacart/internal/repository/postgres"
	redisrepo "github.com/dtroode/cacart/internal/repository/redis"
	"github.com/dtroode/cacart/internal/server"
	"github.com/dtroode/cacart/internal/service"
	storage "github.com/dtroode/cacart/internal/storage/minio"
	"github.com/dtroode/cacart/internal/token"
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
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	checks := map[string]rest.HealthChecker{"postgres": db}

	var sessionStore model.SessionStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		defer client.Close()
		sessionStore = redisrepo.NewSessionStore(client, cfg.Redis.Prefix)
		checks["redis"] = rest.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		sessionStore = postgres.NewSessionRepository(db)
	}
	logger.Info("session store selected", "backend", cfg.SessionStore)

	images, err := storage.Dial(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize image storage", "error", err)
	}
	checks["minio"] = images

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	productRepo := postgres.NewProductRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := password.NewHasher(password.Params{
		Time:    cfg.KDF.Time,
		MemKiB:  cfg.KDF.MemKiB,
		Threads: cfg.KDF.Par,
	})

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, sessionStore, logger)
	authService := service.NewAuth(userRepo, sessionStore, hasher, tokenService, logger)
	catalogService := service.NewCatalog(productRepo, images, logger)

	registry := observability.NewRegistry()
	grpcMetrics := observability.NewGRPCMetrics(registry)

	r := router.New(authService, catalogService, tokenService, grpcctx.NewManager(), grpcMetrics, logger)
	grpcSrv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	httpSrv := rest.NewHTTPServer(
		rest.NewRouter(catalogService, checks, registry, logger),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
		cfg.HTTP.ReadHeaderTimeout,
	)

	grpcSecurity, err := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	if err != nil {
		logger.Fatal("failed to initialize security layer", "error", err)
	}

	servers := []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{
		{srv: grpcSrv, sl: grpcSecurity},
		{srv: httpSrv, sl: server.NewPlainListener()},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("server stopped with error", "address", s.Address(), "error", err)
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
