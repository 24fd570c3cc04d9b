package worker

import (
	"context"
	"time"

	"github.com/endosim/pk-api/internal/repository"
	"github.com/endosim/pk-api/pkg/logger"
)

// OutboxCleanupWorker trims processed outbox rows past their
// retention window. Dead-lettered events are kept.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.retention)
			deleted, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
			if err != nil {
				w.logger.Error(err, "Failed to clean up processed outbox events")
				continue
			}
			if deleted > 0 {
				w.logger.Info("Cleaned up processed outbox events", "deleted", deleted)
			}
		}
	}
}
