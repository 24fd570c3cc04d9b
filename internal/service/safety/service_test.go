package safety

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/analysis"
	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/pkg/logger"
)

type fakeSim struct {
	stats model.SummaryStats
	err   error
	got   *model.SimulateRequest
}

func (f *fakeSim) Simulate(ctx context.Context, req *model.SimulateRequest) (*model.SimulateResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	stats := f.stats
	return &model.SimulateResponse{Unit: analysis.UnitPgML, Stats: &stats}, nil
}

type fakeDrugSource struct {
	store pk.DrugStore
	err   error
}

func (f *fakeDrugSource) Snapshot(ctx context.Context) (pk.DrugStore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func testService(sim Simulator) *Service {
	return NewService(sim, &fakeDrugSource{store: catalog.New()}, logger.NewLogger(&logger.Config{Level: "error"}))
}

func levels(risks []model.RiskMessage) []model.RiskLevel {
	out := make([]model.RiskLevel, len(risks))
	for i, r := range risks {
		out[i] = r.Level
	}
	return out
}

func TestAnalyzeForwardsSimulation(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 120, TroughPgML: 110, AveragePgML: 115}}
	svc := testService(sim)

	req := &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
		Days:    60,
		Factors: model.CalibrationFactors{model.RouteInjection: 1.2},
	}

	report, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, sim.got)
	assert.True(t, sim.got.IncludeStats)
	assert.Equal(t, 60, sim.got.Days)
	assert.Equal(t, req.Schedule, sim.got.Schedule)
	assert.Equal(t, req.Factors, sim.got.Factors)
	assert.Equal(t, 120.0, report.Stats.PeakPgML)
}

func TestAnalyzeSmokerOverThirtyFiveOnOralEstrogen(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 120, TroughPgML: 110, AveragePgML: 115}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Profile: &model.PatientProfile{AgeYears: 40},
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynova)", DoseMg: 2, IntervalDays: 1},
		},
		Smoker: true,
	})
	require.NoError(t, err)

	assert.Contains(t, levels(report.Risks), model.RiskCritical)
	// Default BMI stays under 25; smoker +2, age 40 +1, oral estrogen +1.
	assert.Equal(t, 4, report.VTE.Score)
	assert.Equal(t, analysis.VTEGradeModerate, report.VTE.Grade)
	assert.Nil(t, report.Monotherapy)
	assert.False(t, report.BoneRisk)
}

func TestAnalyzeSpikeRules(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 2000, TroughPgML: 150, AveragePgML: 900}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
	})
	require.NoError(t, err)

	// Both spike rules fire: over 1500 and over the acute-spike limit.
	require.Len(t, report.Risks, 2)
	assert.Equal(t, []model.RiskLevel{model.RiskHigh, model.RiskMedium}, levels(report.Risks))
}

func TestAnalyzeMonotherapyWithoutCover(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 130, TroughPgML: 80, AveragePgML: 100}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, report.Monotherapy)
	assert.Equal(t, model.MonotherapyInsufficient, report.Monotherapy.Status)
	assert.False(t, report.BoneRisk)
}

func TestAnalyzeMonotherapyWithAntiAndrogenCover(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 130, TroughPgML: 80, AveragePgML: 100}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
			{Drug: "Spironolactone", DoseMg: 50, IntervalDays: 1},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, report.Monotherapy)
	assert.Equal(t, model.MonotherapyCombined, report.Monotherapy.Status)
}

func TestAnalyzeLowTroughFlagsBoneRisk(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 90, TroughPgML: 30, AveragePgML: 60}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
	})
	require.NoError(t, err)

	assert.True(t, report.BoneRisk)
	assert.Contains(t, levels(report.Risks), model.RiskMedium)
}

func TestAnalyzeInteractionsAndMonitoring(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 130, TroughPgML: 110, AveragePgML: 120}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
			{Drug: "Spironolactone", DoseMg: 50, IntervalDays: 1},
		},
		OtherMeds: []string{"Ketoconazole", "NSAIDs (long-term)", "Vitamin D"},
	})
	require.NoError(t, err)

	require.Len(t, report.Interactions, 2)
	assert.Equal(t, model.RiskMedium, report.Interactions[0].Level)
	assert.Equal(t, "Ketoconazole", report.Interactions[0].Med)
	assert.Equal(t, model.RiskCritical, report.Interactions[1].Level)

	require.Len(t, report.Monitoring, 2)
	assert.Equal(t, "Estradiol Valerate (Progynon Depot)", report.Monitoring[0].Drug)
	assert.Equal(t, "Spironolactone", report.Monitoring[1].Drug)
	assert.Contains(t, report.Monitoring[1].Exams, "Potassium (K+)")
}

func TestAnalyzeSurgeryRiskRaisesVTEScore(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 130, TroughPgML: 110, AveragePgML: 120}}
	svc := testService(sim)

	report, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
		HistoryVTE:  true,
		SurgeryRisk: model.RiskHigh,
	})
	require.NoError(t, err)

	// History +3, high-risk surgery +3.
	assert.Equal(t, 6, report.VTE.Score)
	assert.Equal(t, analysis.VTEGradeHigh, report.VTE.Grade)
}

func TestAnalyzeSimulationErrorPropagates(t *testing.T) {
	sim := &fakeSim{err: fmt.Errorf("schedule must contain at least one entry")}
	svc := testService(sim)

	_, err := svc.Analyze(context.Background(), &model.SafetyRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule")
}

func TestAnalyzeSnapshotErrorPropagates(t *testing.T) {
	sim := &fakeSim{stats: model.SummaryStats{PeakPgML: 130, TroughPgML: 110, AveragePgML: 120}}
	svc := NewService(sim, &fakeDrugSource{err: fmt.Errorf("connection refused")}, logger.NewLogger(&logger.Config{Level: "error"}))

	_, err := svc.Analyze(context.Background(), &model.SafetyRequest{
		Schedule: []model.ScheduleEntry{
			{Drug: "Estradiol Valerate (Progynon Depot)", DoseMg: 10, IntervalDays: 14},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to snapshot drug store")
}
