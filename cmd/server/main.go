package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/proconnect/verification-system/internal/api"
	"github.com/proconnect/verification-system/internal/core/service"
	"github.com/proconnect/verification-system/internal/infrastructure/config"
	mongodb "github.com/proconnect/verification-system/internal/infrastructure/db/mongo"
	redisdb "github.com/proconnect/verification-system/internal/infrastructure/db/redis"
	"github.com/proconnect/verification-system/internal/infrastructure/queue"
	"github.com/proconnect/verification-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Credential Verification API
// @version         1.0
// @description     Credential verification workflow and trust score engine.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	credentialRepo := mongodb.NewCredentialRepository(db)
	requestRepo := mongodb.NewRequestRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	txRunner := mongodb.NewTxRunner(client)

	if err := credentialRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("credential indexes failed")
	}
	if err := requestRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("request indexes failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}

	// --- Services ---
	scoreCache := redisdb.NewScoreCache(rdb, cfg.ScoreCacheTTL)
	trustScoreService := service.NewTrustScoreService(credentialRepo, userRepo, scoreCache, log)
	verificationService := service.NewVerificationService(
		credentialRepo, requestRepo, userRepo, trustScoreService, txRunner, scoreCache, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	// --- Bulk recompute workers ---
	dispatcher := queue.NewDispatcher(cfg.RecomputeWorkers, trustScoreService, userRepo, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(db, rdb, api.Services{
		Auth:         authService,
		Verification: verificationService,
		TrustScore:   trustScoreService,
	}, dispatcher, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
