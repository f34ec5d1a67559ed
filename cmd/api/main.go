package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/authgate/session-service/internal/api"
	"github.com/authgate/session-service/internal/core/ports"
	"github.com/authgate/session-service/internal/core/service"
	mongodb "github.com/authgate/session-service/internal/infrastructure/db/mongo"
	redisdb "github.com/authgate/session-service/internal/infrastructure/db/redis"
	"github.com/authgate/session-service/internal/infrastructure/queue"
	"github.com/authgate/session-service/internal/infrastructure/store/memstore"
	"github.com/authgate/session-service/internal/infrastructure/sweeper"
	"github.com/authgate/session-service/internal/pkg/config"
	"github.com/authgate/session-service/internal/pkg/hash"
	"github.com/authgate/session-service/pkg/logger"
)

// @title           Session Service API
// @version         1.0
// @description     Session-based authentication: login issues an opaque bearer token, expired sessions are garbage-collected by sweeps.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB: users and audit trail ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure user indexes")
	}

	// --- Audit pipeline ---
	auditService := service.NewAuditService(mongodb.NewAuditRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, log)
	dispatcher.Start(ctx)

	// --- Session store backend ---
	var rdb *goredis.Client
	var sessions ports.SessionStore
	switch cfg.Session.StoreBackend {
	case "memory":
		sessions = memstore.NewStore(log)
		log.Info().Msg("using in-memory session store")
	default:
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() { _ = rdb.Close() }()
		sessions = redisdb.NewSessionStore(rdb, log)
	}

	// --- Core service ---
	hasher := hash.New(cfg.Hash.MaxConcurrent)
	authService := service.NewAuthService(userRepo, sessions, hasher, dispatcher, log, cfg.Session.TTL)

	sweeper.New(authService, sessions, cfg.Session.SweepInterval, log).Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(authService, api.RouterConfig{
		InternalToken: cfg.InternalToken,
		Mongo:         db,
		Redis:         rdb,
	}, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("store", cfg.Session.StoreBackend).Msg("session service started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
