package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/config"
	authHandler "github.com/endosim/pk-api/internal/handler/auth"
	calibrationHandler "github.com/endosim/pk-api/internal/handler/calibration"
	drugHandler "github.com/endosim/pk-api/internal/handler/drug"
	healthHandler "github.com/endosim/pk-api/internal/handler/health"
	promHandler "github.com/endosim/pk-api/internal/handler/prometheus"
	safetyHandler "github.com/endosim/pk-api/internal/handler/safety"
	simulationHandler "github.com/endosim/pk-api/internal/handler/simulation"
	"github.com/endosim/pk-api/internal/middleware"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/internal/repository/postgres"
	"github.com/endosim/pk-api/internal/router"
	calibrationService "github.com/endosim/pk-api/internal/service/calibration"
	drugService "github.com/endosim/pk-api/internal/service/drug"
	safetyService "github.com/endosim/pk-api/internal/service/safety"
	simulationService "github.com/endosim/pk-api/internal/service/simulation"
	tokenService "github.com/endosim/pk-api/internal/service/token"
	"github.com/endosim/pk-api/pkg/auth"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/messaging/redis"
	"github.com/endosim/pk-api/pkg/metrics"
	"github.com/endosim/pk-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	format := "json"
	if cfg.Logger.Pretty {
		format = "console"
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: format,
	})
	log.Logger = *appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("pkapi")

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog(), m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	drugRepo := postgres.NewDrugRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	drugSvc := drugService.NewService(drugRepo, catalog.New(), appLogger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	err = drugSvc.SeedFromCatalog(seedCtx)
	cancelSeed()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed drug catalog")
	}

	engineCfg := cfg.Engine.ApplyEngine(pk.DefaultConfig())
	simulationSvc := simulationService.NewService(drugSvc, engineCfg, simulationService.Config{
		MaxDays:       cfg.Engine.MaxSimulationDays,
		MaxResolution: cfg.Engine.MaxResolution,
		CacheTTL:      cfg.Engine.CacheTTL,
		CacheCleanup:  cfg.Engine.CacheCleanupInterval,
	}, m, appLogger)
	calibrationSvc := calibrationService.NewService(drugSvc, outboxRepo, engineCfg, m, appLogger)
	safetySvc := safetyService.NewService(simulationSvc, drugSvc, appLogger)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	tokenSvc := tokenService.NewService(hasher, jwtSvc, cfg.Auth.APIKeyHash, appLogger)

	r := router.NewRouter(
		healthHandler.NewHandler(db, broker),
		promHandler.New(),
		authHandler.NewHandler(tokenSvc),
		drugHandler.NewHandler(drugSvc),
		simulationHandler.NewHandler(simulationSvc),
		calibrationHandler.NewHandler(calibrationSvc),
		safetyHandler.NewHandler(safetySvc),
		middleware.RequireScope(jwtSvc, auth.ScopeAdmin),
		router.Config{
			RequestTimeout:    cfg.Server.RequestTimeout,
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			RateBurst:         cfg.RateLimit.Burst,
			CORS:              corsConfig(cfg.CORS),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		out.AllowOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		out.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		out.AllowHeaders = cfg.AllowedHeaders
	}
	return out
}
