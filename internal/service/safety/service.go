// Package safety runs the combined clinical analysis: simulate the
// schedule, summarize the curve and evaluate the safety rule set
// against the result.
package safety

import (
	"context"
	"fmt"

	"github.com/endosim/pk-api/internal/analysis"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/pkg/logger"
)

// Simulator produces the curve and statistics the rules read. Routing
// through the simulation service keeps its caching and metrics in one
// place.
type Simulator interface {
	Simulate(ctx context.Context, req *model.SimulateRequest) (*model.SimulateResponse, error)
}

// DrugSource supplies the analyzer's view of the drug parameters.
type DrugSource interface {
	Snapshot(ctx context.Context) (pk.DrugStore, error)
}

// Servicer defines the safety analysis operation.
type Servicer interface {
	Analyze(ctx context.Context, req *model.SafetyRequest) (*model.SafetyReport, error)
}

type Service struct {
	sim    Simulator
	drugs  DrugSource
	logger *logger.Logger
}

func NewService(sim Simulator, drugs DrugSource, logger *logger.Logger) *Service {
	return &Service{
		sim:    sim,
		drugs:  drugs,
		logger: logger,
	}
}

// Analyze simulates the schedule and evaluates the clinical rule set
// against the resulting statistics.
func (s *Service) Analyze(ctx context.Context, req *model.SafetyRequest) (*model.SafetyReport, error) {
	resp, err := s.sim.Simulate(ctx, &model.SimulateRequest{
		Profile:      req.Profile,
		Schedule:     req.Schedule,
		Days:         req.Days,
		Resolution:   req.Resolution,
		Factors:      req.Factors,
		IncludeStats: true,
	})
	if err != nil {
		return nil, err
	}

	store, err := s.drugs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot drug store: %w", err)
	}

	profile := model.DefaultPatientProfile()
	if req.Profile != nil {
		profile = req.Profile.WithDefaults()
	}

	var stats model.SummaryStats
	if resp.Stats != nil {
		stats = *resp.Stats
	}

	report := analysis.NewAnalyzer(store).Safety(analysis.SafetyInput{
		Profile:     profile,
		Schedule:    req.Schedule,
		Stats:       stats,
		Smoker:      req.Smoker,
		HistoryVTE:  req.HistoryVTE,
		Migraine:    req.Migraine,
		SurgeryRisk: req.SurgeryRisk,
		OtherMeds:   req.OtherMeds,
	})

	s.logger.Debug("Safety analysis completed",
		"risks", len(report.Risks),
		"vte_grade", report.VTE.Grade,
	)
	return report, nil
}
