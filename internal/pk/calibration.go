package pk

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// CalibrationInput describes a single-lab calibration estimate: back-
// solve the multiplier for TargetRoute that reconciles the simulated
// trough near LabDay with the measured LabValue.
type CalibrationInput struct {
	Profile     model.PatientProfile
	Schedule    []model.ScheduleEntry
	LabDay      float64
	LabValue    float64
	TargetRoute model.RouteType
	Factors     model.CalibrationFactors
}

// WeightedCalibrationInput aggregates a lab history into one factor,
// weighting recent draws exponentially higher.
type WeightedCalibrationInput struct {
	Profile     model.PatientProfile
	Schedule    []model.ScheduleEntry
	History     []model.LabRecord
	TargetRoute model.RouteType
	Factors     model.CalibrationFactors
}

// EstimateFactor splits the schedule into target-route entries and
// the remainder, simulates both at calibration resolution with the
// target's own factor neutralized, finds the combined trough in the
// window around the lab day, and solves
//
//	factor = (labValue - otherConc) / targetConc
//
// clipped into [FactorMin, FactorMax]. Degenerate inputs (lab value
// <= 0, target concentration below the floor) return the neutral 1.0.
func (e *Engine) EstimateFactor(in CalibrationInput) float64 {
	cfg := &e.cfg
	if in.LabValue <= 0 {
		return 1.0
	}

	factors := in.Factors.Clone()
	factors[in.TargetRoute] = 1.0

	var otherEntries, targetEntries []model.ScheduleEntry
	for _, entry := range in.Schedule {
		drug, ok := e.store.Get(entry.Drug)
		if !ok {
			continue
		}
		if drug.Route == in.TargetRoute {
			targetEntries = append(targetEntries, entry)
		} else {
			otherEntries = append(otherEntries, entry)
		}
	}

	days := in.LabDay + 1
	other := e.Simulate(SimulationInput{
		Profile:    in.Profile,
		Schedule:   otherEntries,
		Days:       days,
		Resolution: cfg.CalibrationResolution,
		Factors:    factors,
	})
	target := e.Simulate(SimulationInput{
		Profile:    in.Profile,
		Schedule:   targetEntries,
		Days:       days,
		Resolution: cfg.CalibrationResolution,
		Factors:    model.CalibrationFactors{in.TargetRoute: 1.0},
	})

	idx := e.troughIndex(other, target, in.LabDay)

	otherConc := other.Concentrations[idx]
	targetConc := target.Concentrations[idx]

	if targetConc < cfg.MinTargetConcentration {
		return 1.0
	}

	factor := (in.LabValue - otherConc) / targetConc
	return clamp(factor, cfg.FactorMin, cfg.FactorMax)
}

// troughIndex locates the minimum combined concentration inside the
// search window around the lab day, falling back to the sample
// nearest the lab day when the window holds no samples. Both results
// share one grid, so indices line up.
func (e *Engine) troughIndex(other, target *model.SimulationResult, labDay float64) int {
	cfg := &e.cfg
	lo := math.Max(0, labDay-cfg.TroughWindowBeforeDays)
	hi := labDay + cfg.TroughWindowAfterDays

	idx := -1
	best := math.Inf(1)
	for i, day := range other.TimeDays {
		if day < lo || day > hi {
			continue
		}
		combined := other.Concentrations[i] + target.Concentrations[i]
		if combined < best {
			best = combined
			idx = i
		}
	}
	if idx >= 0 {
		return idx
	}

	nearest := 0
	bestDist := math.Inf(1)
	for i, day := range other.TimeDays {
		if dist := math.Abs(day - labDay); dist < bestDist {
			bestDist = dist
			nearest = i
		}
	}
	return nearest
}

// EstimateWeightedFactor runs EstimateFactor per lab record and
// averages the factors with weights e^(day/RecencyTimeConstant), so
// later draws dominate. An empty history returns the neutral 1.0.
func (e *Engine) EstimateWeightedFactor(in WeightedCalibrationInput) float64 {
	if len(in.History) == 0 {
		return 1.0
	}

	var weightedSum, weightTotal float64
	for _, record := range in.History {
		factor := e.EstimateFactor(CalibrationInput{
			Profile:     in.Profile,
			Schedule:    in.Schedule,
			LabDay:      record.Day,
			LabValue:    record.Value,
			TargetRoute: in.TargetRoute,
			Factors:     in.Factors,
		})
		weight := math.Exp(record.Day / e.cfg.RecencyTimeConstant)
		weightedSum += factor * weight
		weightTotal += weight
	}

	return weightedSum / weightTotal
}
