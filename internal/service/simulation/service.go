// Package simulation adapts simulate requests to the engine: it fills
// profile defaults, enforces the configured size caps, memoizes
// results and layers unit conversion, summary statistics and lab-fit
// accuracy on top of the raw curve.
package simulation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/endosim/pk-api/internal/analysis"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	apperrors "github.com/endosim/pk-api/pkg/errors"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/metrics"
	"github.com/endosim/pk-api/pkg/validator"
)

// DrugSource supplies the engine's view of the drug parameters.
type DrugSource interface {
	Snapshot(ctx context.Context) (pk.DrugStore, error)
}

// Servicer defines the simulation operations.
type Servicer interface {
	Simulate(ctx context.Context, req *model.SimulateRequest) (*model.SimulateResponse, error)
}

// Config bounds request size and tunes the result cache.
type Config struct {
	MaxDays       float64
	MaxResolution int
	CacheTTL      time.Duration
	CacheCleanup  time.Duration
}

// DefaultConfig returns the bounds used when a field is unset.
func DefaultConfig() Config {
	return Config{
		MaxDays:       365,
		MaxResolution: 1000,
		CacheTTL:      5 * time.Minute,
		CacheCleanup:  10 * time.Minute,
	}
}

// Service runs simulations against the current drug snapshot. The
// engine itself stays cache-free; memoization lives here, keyed by a
// digest of the normalized input.
type Service struct {
	drugs     DrugSource
	engineCfg pk.Config
	cfg       Config
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(drugs DrugSource, engineCfg pk.Config, cfg Config, m *metrics.Metrics, logger *logger.Logger) *Service {
	def := DefaultConfig()
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = def.MaxDays
	}
	if cfg.MaxResolution <= 0 {
		cfg.MaxResolution = def.MaxResolution
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.CacheCleanup <= 0 {
		cfg.CacheCleanup = def.CacheCleanup
	}

	return &Service{
		drugs:     drugs,
		engineCfg: engineCfg,
		cfg:       cfg,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheCleanup),
		metrics:   m,
		logger:    logger,
	}
}

// Simulate validates the request, runs or recalls the curve and
// attaches the requested derived blocks. Stats and accuracy are
// computed on the pg/mL curve regardless of the response unit.
func (s *Service) Simulate(ctx context.Context, req *model.SimulateRequest) (*model.SimulateResponse, error) {
	if err := s.validate(req); err != nil {
		s.metrics.SimulationsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	result, err := s.simulate(ctx, s.input(req))
	if err != nil {
		s.metrics.SimulationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.SimulationsTotal.WithLabelValues("ok").Inc()

	unit := req.Unit
	if unit == "" {
		unit = analysis.UnitPgML
	}

	resp := &model.SimulateResponse{
		Unit:           unit,
		TimeDays:       result.TimeDays,
		Concentrations: analysis.ConvertSeries(result.Concentrations, unit),
	}
	if req.IncludeStats {
		stats := analysis.Summarize(result)
		resp.Stats = &stats
	}
	if len(req.LabPoints) > 0 {
		if report, ok := analysis.Accuracy(result, req.LabPoints); ok {
			resp.Accuracy = &report
		}
	}
	return resp, nil
}

func (s *Service) validate(req *model.SimulateRequest) error {
	if err := validator.ValidateSchedule(req.Schedule); err != nil {
		return err
	}
	if err := validator.ValidateCessationWindow(req.StopDay, req.ResumeDay); err != nil {
		return err
	}
	if err := validator.ValidateFactors(req.Factors); err != nil {
		return err
	}
	if float64(req.Days) > s.cfg.MaxDays {
		return fmt.Errorf("days must be at most %v", s.cfg.MaxDays)
	}
	if req.Resolution > s.cfg.MaxResolution {
		return fmt.Errorf("resolution must be at most %d", s.cfg.MaxResolution)
	}
	return nil
}

// input normalizes the request into an engine input. Profile, days and
// resolution defaults are applied here, before the digest is taken, so
// implicit and explicit defaults share one cache entry.
func (s *Service) input(req *model.SimulateRequest) pk.SimulationInput {
	profile := model.DefaultPatientProfile()
	if req.Profile != nil {
		profile = req.Profile.WithDefaults()
	}

	days := float64(req.Days)
	if days <= 0 {
		days = 30
	}
	resolution := req.Resolution
	if resolution <= 0 {
		resolution = 100
	}

	return pk.SimulationInput{
		Profile:    profile,
		Schedule:   req.Schedule,
		Days:       days,
		Resolution: resolution,
		Factors:    req.Factors,
		StopDay:    req.StopDay,
		ResumeDay:  req.ResumeDay,
	}
}

// simulate returns the cached curve for the input digest or computes
// and caches a fresh one. Cached results are shared across requests
// and must not be mutated.
func (s *Service) simulate(ctx context.Context, in pk.SimulationInput) (*model.SimulationResult, error) {
	key, err := digest(in)
	if err != nil {
		return nil, fmt.Errorf("failed to digest simulation input: %w", err)
	}

	if hit, found := s.cache.Get(key); found {
		s.metrics.SimulationCacheHits.Inc()
		s.logger.Debug("Simulation served from cache")
		return hit.(*model.SimulationResult), nil
	}

	store, err := s.drugs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot drug store: %w", err)
	}

	timer := prometheus.NewTimer(s.metrics.SimulationDuration)
	result := pk.New(store, s.engineCfg).Simulate(in)
	timer.ObserveDuration()

	s.cache.Set(key, result, cache.DefaultExpiration)
	return result, nil
}

// digest keys the result cache. Map keys marshal in sorted order, so
// equal inputs always produce equal digests.
func digest(in pk.SimulationInput) (string, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
