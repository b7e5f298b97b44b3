package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	grpcctx "github.com/dtroode/identity-server/internal/api/grpc/context"
	grpcRouter "github.com/dtroode/identity-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/identity-server/internal/api/grpc/server"
	httpRouter "github.com/dtroode/identity-server/internal/api/http/router"
	httpServer "github.com/dtroode/identity-server/internal/api/http/server"
	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/password"
	"github.com/dtroode/identity-server/internal/repository/memory"
	"github.com/dtroode/identity-server/internal/repository/postgres"
	"github.com/dtroode/identity-server/internal/repository/redis"
	"github.com/dtroode/identity-server/internal/server"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users   model.UserStore
	refresh model.RefreshTokenStore
	closers []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer st.Close()

	hasher, err := password.NewArgon2(password.Params{
		Time:        cfg.KDF.Time,
		MemoryKiB:   cfg.KDF.MemKiB,
		Parallelism: cfg.KDF.Par,
	})
	if err != nil {
		logger.Fatal("invalid KDF parameters", "error", err)
	}

	codec, err := token.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		logger.Fatal("failed to initialize token codec", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tokenService := service.NewTokenService(codec, st.refresh, logger, service.WithMetrics(m))
	authService, err := service.NewAuth(st.users, hasher, tokenService, logger, service.WithMetrics(m))
	if err != nil {
		logger.Fatal("failed to initialize auth service", "error", err)
	}
	profileService := service.NewProfile(st.users, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := httpRouter.New(authService, profileService, tokenService, m, registry, logger).Register()
	restServer := httpServer.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	grpcSrv := grpcRouter.New(authService, profileService, tokenService, grpcctx.NewManager(), m, logger).Register()
	rpcServer := grpcServer.NewGRPCServer(grpcSrv, fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []model.Server{restServer, rpcServer} {
		s := s
		g.Go(func() error {
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				return fmt.Errorf("server %s: %w", s.Address(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range []model.Server{restServer, rpcServer} {
			if err := s.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", s.Address(), err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server terminated with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func openStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*stores, error) {
	st := &stores{}

	var db *postgres.Connection
	if cfg.UsesPostgres() {
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN, cfg.Database.QueryTimeout)
		if err != nil {
			return nil, err
		}
		db = conn
		st.closers = append(st.closers, db.Close)
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory user store, data is lost on restart")
		st.users = memory.NewUserRepository()
	default:
		st.users = postgres.NewUserRepository(db)
	}

	switch cfg.Storage.RefreshDriver {
	case config.DriverMemory:
		st.refresh = memory.NewRefreshTokenRepository()
	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, client.Close)
		st.refresh = redis.NewRefreshTokenRepository(client, cfg.Redis.KeyPrefix, cfg.Redis.Timeout)
	default:
		st.refresh = postgres.NewRefreshTokenRepository(db)
	}

	return st, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
