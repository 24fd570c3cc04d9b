package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/endosim/pk-api/internal/config"
	"github.com/endosim/pk-api/internal/repository/postgres"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/messaging"
	"github.com/endosim/pk-api/pkg/messaging/redis"
	"github.com/endosim/pk-api/pkg/metrics"
	"github.com/endosim/pk-api/pkg/worker"
)

const healthAddr = ":8081"

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

	m := metrics.New("pkworker")

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog(), m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToProcessorConfig(),
		appLogger,
		m,
	)
	cleanup := worker.NewOutboxCleanupWorker(
		outboxRepo,
		cfg.Outbox.RetainProcessedFor,
		cfg.Outbox.CleanupInterval,
		appLogger,
	)

	startHealthServer(db, broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down worker...")
		cancel()
	}()

	go cleanup.Start(ctx)
	processor.Start(ctx)

	log.Info().Msg("worker exited properly")
}

// startHealthServer exposes liveness, readiness and metrics on a side
// port so the outbox loops keep the main goroutine.
func startHealthServer(db *sqlx.DB, broker messaging.Broker) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := broker.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(healthAddr, mux); err != nil {
			log.Error().Err(err).Msg("health server failed")
		}
	}()
}
