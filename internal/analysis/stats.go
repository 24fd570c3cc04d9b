package analysis

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// Summarize reduces a simulated curve to its summary statistics.
//
// Trough and average are computed over the steady-state window, which
// runs from the first sample reaching 99% of the peak to the last one,
// so the initial rise from zero and any post-cessation decay are left
// out. With a single qualifying sample the window extends to the end
// of the curve. Fluctuation is (peak-trough)/average as a percentage;
// the maximum slope is the steepest absolute change between
// consecutive samples in pg/mL per day.
func Summarize(result *model.SimulationResult) model.SummaryStats {
	conc := result.Concentrations
	if len(conc) == 0 {
		return model.SummaryStats{}
	}

	peak := conc[0]
	for _, v := range conc {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return model.SummaryStats{}
	}

	var maxSlope float64
	for i := 1; i < len(conc); i++ {
		dt := result.TimeDays[i] - result.TimeDays[i-1]
		if dt <= 0 {
			continue
		}
		if slope := math.Abs((conc[i] - conc[i-1]) / dt); slope > maxSlope {
			maxSlope = slope
		}
	}

	threshold := peak * 0.99
	first := 0
	for i, v := range conc {
		if v >= threshold {
			first = i
			break
		}
	}
	last := first
	for i := len(conc) - 1; i >= 0; i-- {
		if conc[i] >= threshold {
			last = i
			break
		}
	}

	steady := conc[first : last+1]
	if first == last {
		steady = conc[first:]
	}

	trough := steady[0]
	var sum float64
	for _, v := range steady {
		if v < trough {
			trough = v
		}
		sum += v
	}
	avg := sum / float64(len(steady))

	var fluctuation float64
	if avg > 0 {
		fluctuation = (peak - trough) / avg * 100
	}

	return model.SummaryStats{
		PeakPgML:       peak,
		TroughPgML:     trough,
		AveragePgML:    avg,
		FluctuationPct: fluctuation,
		MaxSlopePerDay: maxSlope,
	}
}

// SlopeRisky reports whether a concentration change rate is clinically
// abrupt: over 1000 pg/mL per day in absolute terms, or over half the
// reference level per day.
func SlopeRisky(slopePerDay, referencePgML float64) bool {
	if math.Abs(slopePerDay) > 1000 {
		return true
	}
	return referencePgML > 0 && math.Abs(slopePerDay)/referencePgML > 0.5
}
