package pk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/model"
)

// troughInWindow mirrors the lab-draw convention: the minimum sample
// inside [labDay-0.5, labDay+0.1].
func troughInWindow(result *model.SimulationResult, labDay float64) float64 {
	lo := math.Max(0, labDay-0.5)
	hi := labDay + 0.1
	best := math.Inf(1)
	for i, day := range result.TimeDays {
		if day < lo || day > hi {
			continue
		}
		if result.Concentrations[i] < best {
			best = result.Concentrations[i]
		}
	}
	return best
}

func TestEstimateFactorRoundTrip(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
	}
	sim := e.Simulate(SimulationInput{
		Profile:    defaultProfile(),
		Schedule:   schedule,
		Days:       15,
		Resolution: 24,
	})
	lab := troughInWindow(sim, 14)
	require.Greater(t, lab, 0.0)

	factor := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      14,
		LabValue:    lab,
		TargetRoute: model.RouteInjection,
	})

	// A lab drawn from an uncalibrated simulation solves back to the
	// neutral factor.
	assert.InDelta(t, 1.0, factor, 1e-9)
}

func TestEstimateFactorRecoversKnownFactor(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
		{Drug: oralTablet().Name, DoseMg: 2, IntervalDays: 1},
	}
	sim := e.Simulate(SimulationInput{
		Profile:    defaultProfile(),
		Schedule:   schedule,
		Days:       15,
		Resolution: 24,
		Factors:    model.CalibrationFactors{model.RouteInjection: 1.8},
	})
	lab := troughInWindow(sim, 14)

	factor := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      14,
		LabValue:    lab,
		TargetRoute: model.RouteInjection,
	})

	// The oral background is subtracted out, leaving the injection
	// multiplier that produced the lab.
	assert.InDelta(t, 1.8, factor, 1e-6)
}

func TestEstimateFactorNonPositiveLab(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
	}

	for _, lab := range []float64{0, -25} {
		factor := e.EstimateFactor(CalibrationInput{
			Profile:     defaultProfile(),
			Schedule:    schedule,
			LabDay:      14,
			LabValue:    lab,
			TargetRoute: model.RouteInjection,
		})
		assert.Equal(t, 1.0, factor)
	}
}

func TestEstimateFactorNoTargetRouteDoses(t *testing.T) {
	e := testEngine()

	factor := e.EstimateFactor(CalibrationInput{
		Profile: defaultProfile(),
		Schedule: []model.ScheduleEntry{
			{Drug: oralTablet().Name, DoseMg: 2, IntervalDays: 1},
		},
		LabDay:      14,
		LabValue:    120,
		TargetRoute: model.RouteInjection,
	})

	// Nothing on the target route means nothing to attribute the lab
	// to, so the factor stays neutral.
	assert.Equal(t, 1.0, factor)
}

func TestEstimateFactorClipsExtremes(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
	}

	high := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      14,
		LabValue:    1e6,
		TargetRoute: model.RouteInjection,
	})
	assert.Equal(t, 5.0, high)

	low := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      14,
		LabValue:    0.5,
		TargetRoute: model.RouteInjection,
	})
	assert.Equal(t, 0.1, low)
}

func TestEstimateFactorClipsNegativeNumerator(t *testing.T) {
	e := testEngine()

	// The oral background alone exceeds the lab value, driving the raw
	// factor negative.
	factor := e.EstimateFactor(CalibrationInput{
		Profile: defaultProfile(),
		Schedule: []model.ScheduleEntry{
			{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
			{Drug: oralTablet().Name, DoseMg: 2, IntervalDays: 1},
		},
		LabDay:      14,
		LabValue:    10,
		TargetRoute: model.RouteInjection,
	})

	assert.Equal(t, 0.1, factor)
}

func TestTroughIndexFallsBackToNearestSample(t *testing.T) {
	e := testEngine()

	sparse := &model.SimulationResult{
		TimeDays:       []float64{0, 3, 20},
		Concentrations: []float64{5, 4, 3},
	}
	zero := &model.SimulationResult{
		TimeDays:       []float64{0, 3, 20},
		Concentrations: []float64{0, 0, 0},
	}

	// No sample lies inside [4.5, 5.1]; day 3 is closest to day 5.
	assert.Equal(t, 1, e.troughIndex(sparse, zero, 5))
}

func TestEstimateWeightedFactorEmptyHistory(t *testing.T) {
	e := testEngine()

	factor := e.EstimateWeightedFactor(WeightedCalibrationInput{
		Profile:     defaultProfile(),
		TargetRoute: model.RouteInjection,
	})

	assert.Equal(t, 1.0, factor)
}

func TestEstimateWeightedFactorSingleRecord(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
	}
	sim := e.Simulate(SimulationInput{
		Profile:    defaultProfile(),
		Schedule:   schedule,
		Days:       15,
		Resolution: 24,
	})
	lab := troughInWindow(sim, 14)

	single := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      14,
		LabValue:    lab,
		TargetRoute: model.RouteInjection,
	})
	weighted := e.EstimateWeightedFactor(WeightedCalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		History:     []model.LabRecord{{Day: 14, Value: lab}},
		TargetRoute: model.RouteInjection,
	})

	assert.Equal(t, single, weighted)
}

func TestEstimateWeightedFactorRecencyWeighting(t *testing.T) {
	e := testEngine()

	schedule := []model.ScheduleEntry{
		{Drug: depotInjection().Name, DoseMg: 10, IntervalDays: 14},
	}
	neutral := e.Simulate(SimulationInput{
		Profile:    defaultProfile(),
		Schedule:   schedule,
		Days:       15,
		Resolution: 24,
	})
	doubled := e.Simulate(SimulationInput{
		Profile:    defaultProfile(),
		Schedule:   schedule,
		Days:       15,
		Resolution: 24,
		Factors:    model.CalibrationFactors{model.RouteInjection: 2.0},
	})

	history := []model.LabRecord{
		{Day: 7, Value: troughInWindow(neutral, 7)},
		{Day: 14, Value: troughInWindow(doubled, 14)},
	}

	f1 := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      history[0].Day,
		LabValue:    history[0].Value,
		TargetRoute: model.RouteInjection,
	})
	f2 := e.EstimateFactor(CalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		LabDay:      history[1].Day,
		LabValue:    history[1].Value,
		TargetRoute: model.RouteInjection,
	})
	require.InDelta(t, 1.0, f1, 1e-9)
	require.InDelta(t, 2.0, f2, 1e-9)

	w1 := math.Exp(history[0].Day / e.cfg.RecencyTimeConstant)
	w2 := math.Exp(history[1].Day / e.cfg.RecencyTimeConstant)
	want := (f1*w1 + f2*w2) / (w1 + w2)

	got := e.EstimateWeightedFactor(WeightedCalibrationInput{
		Profile:     defaultProfile(),
		Schedule:    schedule,
		History:     history,
		TargetRoute: model.RouteInjection,
	})

	assert.InDelta(t, want, got, 1e-12)
	// The newer, higher lab dominates the blend.
	assert.Greater(t, got, 1.5)
	assert.Less(t, got, 2.0)
}
