package pk

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// SolveAbsorptionRate derives the absorption constant ka (per hour)
// from the elimination constant ke and the published time-to-peak,
// by Newton-Raphson on
//
//	F(ka) = tPeak*(ka - ke) - (ln ka - ln ke)
//
// whose root satisfies tPeak = (ln ka - ln ke)/(ka - ke). The
// returned ka always exceeds ke so the concentration curve keeps its
// absorption-then-elimination shape.
func (e *Engine) SolveAbsorptionRate(tPeakHours, ke float64) float64 {
	cfg := &e.cfg
	if tPeakHours <= 0 {
		// IV-bolus-like instant absorption
		return cfg.InstantAbsorptionKa
	}

	// Heuristic starting point near the root speeds convergence.
	ka := 1.0 / (tPeakHours / 2.5)
	if ka <= ke {
		ka = ke * 2.0
	}

	for i := 0; i < cfg.SolverMaxIterations; i++ {
		if ka <= cfg.SolverMinKa {
			ka = cfg.SolverMinKa
		}

		fVal := tPeakHours*(ka-ke) - (math.Log(ka) - math.Log(ke))
		fPrime := tPeakHours - 1.0/ka

		// A near-zero slope would send the update to infinity.
		if math.Abs(fPrime) < cfg.SolverDerivativeEps {
			break
		}

		delta := fVal / fPrime
		ka -= delta

		if math.Abs(delta) < cfg.SolverConvergenceEps {
			break
		}
	}

	// Guard against flip-flop kinetics.
	if ka <= ke {
		ka = ke + cfg.FlipFlopMargin
	}

	return ka
}

// RateConstants resolves the absorption and elimination constants for
// a drug record. ke follows directly from the half-life; ka is solved
// numerically from the time-to-peak.
func (e *Engine) RateConstants(d *model.DrugRecord) (ka, ke float64) {
	ke = math.Ln2 / d.HalfLifeHours
	ka = e.SolveAbsorptionRate(d.TimeToPeakHours, ke)
	return ka, ke
}
