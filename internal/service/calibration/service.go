// Package calibration exposes the engine's factor estimators and
// enqueues an outbox event for every produced estimate.
package calibration

import (
	"context"
	"fmt"

	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/internal/repository"
	apperrors "github.com/endosim/pk-api/pkg/errors"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/metrics"
	"github.com/endosim/pk-api/pkg/validator"
)

// DrugSource supplies the engine's view of the drug parameters.
type DrugSource interface {
	Snapshot(ctx context.Context) (pk.DrugStore, error)
}

// Servicer defines the calibration operations.
type Servicer interface {
	Estimate(ctx context.Context, req *model.EstimateCalibrationRequest) (*model.CalibrationEstimate, error)
	EstimateWeighted(ctx context.Context, req *model.WeightedCalibrationRequest) (*model.CalibrationEstimate, error)
}

// Service estimates calibration factors against the current drug
// snapshot. A request only succeeds once its event has been enqueued.
type Service struct {
	drugs     DrugSource
	outbox    repository.OutboxRepository
	engineCfg pk.Config
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(drugs DrugSource, outbox repository.OutboxRepository, engineCfg pk.Config, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		drugs:     drugs,
		outbox:    outbox,
		engineCfg: engineCfg,
		metrics:   m,
		logger:    logger,
	}
}

// Estimate back-solves the factor for one lab record. Degenerate
// inputs follow the engine's conventions and yield the neutral 1.0
// rather than an error.
func (s *Service) Estimate(ctx context.Context, req *model.EstimateCalibrationRequest) (*model.CalibrationEstimate, error) {
	if err := s.validate(req.Schedule, req.TargetRoute, req.Factors); err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	engine, err := s.engine(ctx)
	if err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	factor := engine.EstimateFactor(pk.CalibrationInput{
		Profile:     profileOf(req.Profile),
		Schedule:    req.Schedule,
		LabDay:      req.Lab.Day,
		LabValue:    req.Lab.Value,
		TargetRoute: req.TargetRoute,
		Factors:     req.Factors,
	})

	estimate := &model.CalibrationEstimate{
		TargetRoute: req.TargetRoute,
		Factor:      factor,
		LabCount:    1,
	}
	return s.finish(ctx, estimate)
}

// EstimateWeighted aggregates a lab history into one recency-weighted
// factor.
func (s *Service) EstimateWeighted(ctx context.Context, req *model.WeightedCalibrationRequest) (*model.CalibrationEstimate, error) {
	if err := s.validate(req.Schedule, req.TargetRoute, req.Factors); err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	engine, err := s.engine(ctx)
	if err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	factor := engine.EstimateWeightedFactor(pk.WeightedCalibrationInput{
		Profile:     profileOf(req.Profile),
		Schedule:    req.Schedule,
		History:     req.History,
		TargetRoute: req.TargetRoute,
		Factors:     req.Factors,
	})

	estimate := &model.CalibrationEstimate{
		TargetRoute: req.TargetRoute,
		Factor:      factor,
		LabCount:    len(req.History),
		Weighted:    true,
	}
	return s.finish(ctx, estimate)
}

func (s *Service) validate(schedule []model.ScheduleEntry, route model.RouteType, factors model.CalibrationFactors) error {
	if err := validator.ValidateSchedule(schedule); err != nil {
		return err
	}
	if err := validator.ValidateRoute(route); err != nil {
		return err
	}
	return validator.ValidateFactors(factors)
}

func (s *Service) engine(ctx context.Context) (*pk.Engine, error) {
	store, err := s.drugs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot drug store: %w", err)
	}
	return pk.New(store, s.engineCfg), nil
}

// finish enqueues the estimate event and settles the metrics. The
// estimate is not returned unless the event made it into the outbox.
func (s *Service) finish(ctx context.Context, estimate *model.CalibrationEstimate) (*model.CalibrationEstimate, error) {
	event, err := model.NewOutboxEvent(model.EventTypeCalibrationEstimated, estimate)
	if err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to build calibration event: %w", err)
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.metrics.CalibrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to enqueue calibration event: %w", err)
	}

	s.metrics.CalibrationsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Calibration factor estimated",
		"route", string(estimate.TargetRoute),
		"factor", estimate.Factor,
		"labs", estimate.LabCount,
		"weighted", estimate.Weighted,
	)
	return estimate, nil
}

func profileOf(p *model.PatientProfile) model.PatientProfile {
	if p == nil {
		return model.DefaultPatientProfile()
	}
	return p.WithDefaults()
}
