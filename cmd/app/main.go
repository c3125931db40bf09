package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-platform/internal/config"
	"promo-platform/internal/infra/api"
	pg "promo-platform/internal/infra/db/postgres"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"
	red "promo-platform/internal/infra/redis"
	"promo-platform/internal/infra/scheduler"
	"promo-platform/internal/infra/security"
	"promo-platform/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const poolSampleInterval = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Config & logging ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	if cfg.Database.Migrate {
		if err := pg.RunMigrations(cfg.Database.URL, *logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
	}
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	poolSampler := scheduler.New("db_pool_stats", poolSampleInterval, func(context.Context) error {
		metrics.ObservePool(pool.Stat())
		return nil
	}, logger)
	poolSampler.Start(ctx)
	defer poolSampler.Stop()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepoCacheDecorator(pg.NewPostgresUserRepo(pool), redisClient, cfg.Redis.CacheTTL)
	companyRepo := pg.NewCompanyRepoCacheDecorator(pg.NewPostgresCompanyRepo(pool), redisClient, cfg.Redis.CacheTTL)
	promoRepo := pg.NewPostgresPromoRepo(pool)
	activationRepo := pg.NewPostgresActivationRepo(pool)
	likeRepo := pg.NewPostgresLikeRepo(pool)
	credentialRepo := pg.NewPostgresCredentialRepo(pool)

	// ---- Use cases ----
	signer := security.NewJWTSigner(cfg.Security.JWTSecret)
	sessionUC := usecase.NewSessionUseCase(redisClient, signer, cfg.Security.TokenTTL, cfg.Security.EnforceSingleSession, logger)
	feedUC := usecase.NewFeedUseCase(userRepo, promoRepo, tm, logger)
	activationUC := usecase.NewActivationUseCase(userRepo, promoRepo, activationRepo, tm, logger)
	promoUC := usecase.NewPromoUseCase(companyRepo, promoRepo, tm, logger)
	likeUC := usecase.NewLikeUseCase(promoRepo, likeRepo, tm, logger)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	authUC := usecase.NewAuthUseCase(userRepo, companyRepo, credentialRepo, hasher, sessionUC, tm, logger)
	profileUC := usecase.NewProfileUseCase(userRepo, credentialRepo, hasher, tm, logger)

	// ---- HTTP ----
	srv := api.NewServer(api.Deps{
		Feed:       feedUC,
		Activation: activationUC,
		Promos:     promoUC,
		Likes:      likeUC,
		Sessions:   sessionUC,
		Auth:       authUC,
		Profile:    profileUC,
		Limiter:    red.NewRateLimiter(redisClient),
		Health:     []api.Pinger{pool, redisClient},
	}, cfg.HTTP, cfg.RateLimit, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
