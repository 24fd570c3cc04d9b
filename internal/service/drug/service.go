package drug

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/internal/repository"
	apperrors "github.com/endosim/pk-api/pkg/errors"
	"github.com/endosim/pk-api/pkg/logger"
)

// Servicer merges the embedded catalog with operator overrides stored
// in Postgres. Stored rows win by name; catalog records fill the rest.
type Servicer interface {
	List(ctx context.Context, route model.RouteType) ([]*model.DrugRecord, error)
	Get(ctx context.Context, name string) (*model.DrugRecord, error)
	Upsert(ctx context.Context, name string, req *model.UpsertDrugRequest) (*model.DrugRecord, error)
	Delete(ctx context.Context, name string) error
	Snapshot(ctx context.Context) (pk.DrugStore, error)
	SeedFromCatalog(ctx context.Context) error
}

type Service struct {
	repo    repository.DrugRepository
	catalog *catalog.Catalog
	logger  *logger.Logger
}

func NewService(repo repository.DrugRepository, cat *catalog.Catalog, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		logger:  logger,
	}
}

func (s *Service) List(ctx context.Context, route model.RouteType) ([]*model.DrugRecord, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*model.DrugRecord, 0, len(merged))
	for _, rec := range merged {
		if route != "" && rec.Route != route {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) Get(ctx context.Context, name string) (*model.DrugRecord, error) {
	rec, err := s.repo.Get(ctx, name)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get drug: %w", err)
	}
	if rec, ok := s.catalog.Get(name); ok {
		return rec, nil
	}
	return nil, apperrors.NotFound("drug", nil)
}

// Upsert stores the record and its outbox event in one transaction.
func (s *Service) Upsert(ctx context.Context, name string, req *model.UpsertDrugRequest) (*model.DrugRecord, error) {
	rec := req.ToRecord(name)
	if err := rec.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	event, err := model.NewOutboxEvent(model.EventTypeDrugUpdated, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build drug event: %w", err)
	}

	if err := s.repo.UpsertWithEvent(ctx, rec, event); err != nil {
		return nil, fmt.Errorf("failed to upsert drug: %w", err)
	}

	s.logger.Info("Drug parameters updated", "drug", name, "route", string(rec.Route))
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("drug override", err)
		}
		return fmt.Errorf("failed to delete drug: %w", err)
	}

	s.logger.Info("Drug override removed", "drug", name)
	return nil
}

// Snapshot builds the in-memory store the engine reads. The engine
// performs no I/O, so every request works from one consistent view.
func (s *Service) Snapshot(ctx context.Context) (pk.DrugStore, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}
	return pk.MapStore(merged), nil
}

// SeedFromCatalog inserts catalog records that have no stored row yet.
func (s *Service) SeedFromCatalog(ctx context.Context) error {
	if err := s.repo.Seed(ctx, s.catalog.All()); err != nil {
		return fmt.Errorf("failed to seed drugs: %w", err)
	}
	return nil
}

func (s *Service) merged(ctx context.Context) (map[string]*model.DrugRecord, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}

	merged := make(map[string]*model.DrugRecord, len(stored))
	for _, rec := range s.catalog.All() {
		merged[rec.Name] = rec
	}
	for _, rec := range stored {
		merged[rec.Name] = rec
	}
	return merged, nil
}
