// Package main starts the gestortareas HTTP API.
//
// @title           Gestor de Tareas API
// @version         1.0
// @description     Role-based user and task management service.
//
// @BasePath  /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT from POST /auth/login, sent as "Bearer <token>".
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/emipaz/gestortareas/internal/api"
	"github.com/emipaz/gestortareas/internal/api/handler"
	"github.com/emipaz/gestortareas/internal/api/token"
	"github.com/emipaz/gestortareas/internal/core/ports"
	"github.com/emipaz/gestortareas/internal/core/service"
	"github.com/emipaz/gestortareas/internal/infrastructure/config"
	redisdb "github.com/emipaz/gestortareas/internal/infrastructure/db/redis"
	"github.com/emipaz/gestortareas/internal/infrastructure/seed"
	"github.com/emipaz/gestortareas/internal/infrastructure/store/filestore"
	"github.com/emipaz/gestortareas/internal/infrastructure/store/mongostore"
	"github.com/emipaz/gestortareas/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, mongoDB, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("opening store")
	}
	defer closeStore()

	svc, err := service.NewTaskService(ctx, gateway, log)
	if err != nil {
		log.Fatal().Err(err).Msg("loading state")
	}

	if cfg.SeedFile != "" {
		if err := seed.Apply(ctx, svc, cfg.SeedFile, log); err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seeding users")
		}
	}

	var (
		limiter     handler.LoginLimiter
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to redis")
		}
		defer redisClient.Close()
		limiter = redisdb.NewAttemptLimiter(redisClient, cfg.Login.MaxAttempts, cfg.Login.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login attempt limiter enabled")
	}

	e := api.NewRouter(api.Deps{
		Service:   svc,
		Tokens:    token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		JWTSecret: cfg.JWTSecret,
		Limiter:   limiter,
		Mongo:     mongoDB,
		Redis:     redisClient,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().
		Str("port", cfg.Port).
		Str("backend", cfg.Store.Backend).
		Str("env", cfg.Env).
		Msg("api started")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("flushing state")
	}
	log.Info().Msg("api stopped")
}

// openStore builds the persistence gateway selected by STORE_BACKEND. The
// returned database handle is nil for the file backend, which makes the
// readiness probe skip it.
func openStore(ctx context.Context, cfg *config.Config) (ports.PersistenceGateway, *mongo.Database, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		st, err := filestore.New(cfg.Store.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, nil, func() {}, nil

	case "mongo":
		st, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		disconnect := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = st.Disconnect(disconnectCtx)
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, nil, err
		}
		return st, st.Database(), disconnect, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
