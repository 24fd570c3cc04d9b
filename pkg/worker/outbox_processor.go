package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/repository"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/messaging"
	"github.com/endosim/pk-api/pkg/metrics"
)

// Add configuration options
type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	ChannelPrefix string
}

type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	if config.ChannelPrefix == "" {
		config.ChannelPrefix = "events"
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process outbox batch")
			}
		}
	}
}

// processBatch claims a batch under one transaction and holds it until
// every event in the batch is marked, so a crash mid-batch releases
// the rows unmodified.
func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	return p.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		events, err := p.repo.LockPending(ctx, tx, p.config.BatchSize)
		if err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("lock_pending_events", "error").Inc()
			return fmt.Errorf("failed to lock pending events: %w", err)
		}
		p.metrics.DatabaseOperations.WithLabelValues("lock_pending_events", "success").Inc()
		p.metrics.OutboxQueueSize.Set(float64(len(events)))

		for _, event := range events {
			if err := p.processEvent(ctx, tx, event); err != nil {
				p.logger.Error(err, "Failed to process event",
					"event_id", event.ID.String(),
					"event_type", event.EventType)
			}
		}
		return nil
	})
}

func (p *OutboxProcessor) processEvent(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	channel := p.config.ChannelPrefix + ":" + event.EventType

	err := p.broker.Publish(ctx, channel, messaging.Message{
		Type:    event.EventType,
		Payload: event.Payload,
	})
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		return p.repo.UpdateStatusTx(ctx, tx, event.ID, model.OutboxStatusProcessed, nil, nil)
	}

	errStr := err.Error()

	// Retries are driven by the outbox row itself: the event is
	// rescheduled instead of re-published inside the held transaction.
	if event.RetryCount+1 >= p.config.RetryAttempts {
		p.metrics.OutboxEventsFailed.Inc()
		if dlErr := p.repo.MoveToDeadLetterTx(ctx, tx, event); dlErr != nil {
			return fmt.Errorf("failed to dead-letter event: %w", dlErr)
		}
		return err
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(p.config.RetryDelay)
	if updateErr := p.repo.UpdateStatusTx(ctx, tx, event.ID, model.OutboxStatusRetry, &errStr, &retryAt); updateErr != nil {
		return fmt.Errorf("failed to mark event for retry: %w", updateErr)
	}
	return err
}
