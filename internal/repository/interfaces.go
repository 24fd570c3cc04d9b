package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/endosim/pk-api/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	// DrugRepository persists operator-tuned drug records. The embedded
	// catalog remains the fallback for names without a row.
	DrugRepository interface {
		Upsert(ctx context.Context, drug *model.DrugRecord) error
		UpsertWithEvent(ctx context.Context, drug *model.DrugRecord, event *model.OutboxEvent) error
		Get(ctx context.Context, name string) (*model.DrugRecord, error)
		List(ctx context.Context) ([]*model.DrugRecord, error)
		Delete(ctx context.Context, name string) error
		Seed(ctx context.Context, drugs []*model.DrugRecord) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
		LockPending(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error)
		UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		MoveToDeadLetterTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
