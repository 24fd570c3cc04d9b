package analysis

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// Reliability grades.
const (
	ReliabilityExcellent = "excellent"
	ReliabilityGood      = "good"
	ReliabilityPoor      = "poor"
)

// RMSE measures the root-mean-square error between the simulated
// curve and measured lab values, matching each lab to the nearest
// sample in time. It returns false when there are no labs to compare.
func RMSE(result *model.SimulationResult, labs []model.LabRecord) (float64, bool) {
	if len(labs) == 0 || result.Len() == 0 {
		return 0, false
	}

	var sumSq float64
	for _, lab := range labs {
		idx := nearestIndex(result.TimeDays, lab.Day)
		diff := result.Concentrations[idx] - lab.Value
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(labs))), true
}

func nearestIndex(days []float64, day float64) int {
	nearest := 0
	best := math.Inf(1)
	for i, d := range days {
		if dist := math.Abs(d - day); dist < best {
			best = dist
			nearest = i
		}
	}
	return nearest
}

// Reliability grades a pg/mL RMSE: under 20 excellent, under 50 good,
// otherwise poor.
func Reliability(rmsePgML float64) string {
	switch {
	case rmsePgML < 20:
		return ReliabilityExcellent
	case rmsePgML < 50:
		return ReliabilityGood
	default:
		return ReliabilityPoor
	}
}

// Accuracy combines RMSE and its reliability grade; ok is false with
// no labs.
func Accuracy(result *model.SimulationResult, labs []model.LabRecord) (model.AccuracyReport, bool) {
	rmse, ok := RMSE(result, labs)
	if !ok {
		return model.AccuracyReport{}, false
	}
	return model.AccuracyReport{
		RMSE:        rmse,
		Reliability: Reliability(rmse),
		LabCount:    len(labs),
	}, true
}
