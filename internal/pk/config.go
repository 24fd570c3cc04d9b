// Package pk implements the one-compartment pharmacokinetic engine:
// a Newton-Raphson absorption-rate solver, physiology-adjusted Bateman
// concentration curves, a multi-dose superposition simulator with
// cyclic dosing and cessation windows, and a calibration estimator
// that reconciles simulated troughs with measured lab values.
//
// The engine is purely computational: no I/O, no logging, no shared
// mutable state. Independent invocations can run in parallel.
package pk

import (
	"github.com/endosim/pk-api/internal/model"
)

// Config collects the engine's empirical constants. The values carry
// no derivation; they are tuned against published pharmacokinetic
// profiles and are kept adjustable rather than hard-coded.
type Config struct {
	// Absorption solver
	InstantAbsorptionKa  float64 // ka returned when time-to-peak <= 0 (100/h)
	SolverMaxIterations  int     // Newton-Raphson iteration cap (15)
	SolverMinKa          float64 // lower clamp on ka during iteration (1e-5)
	SolverDerivativeEps  float64 // |F'| below this aborts the iteration (1e-7)
	SolverConvergenceEps float64 // |delta| below this ends the iteration (1e-5)
	FlipFlopMargin       float64 // added to ke when a solved ka <= ke (0.01)

	// Physiology adjusters
	LiverEnzymeLimitUL float64 // AST/ALT threshold in U/L (40)
	LiverSlopePerTenU  float64 // concentration gain per 10 U/L excess (0.02)
	LiverFactorMax     float64 // cap on the liver factor (1.2)
	BodyFatBaselinePct float64 // body-fat percentage with neutral Vd (22)
	BodyFatSlope       float64 // Vd change per percentage point (0.008)
	BodyFatMin         float64 // body-fat adjustment floor (0.8)
	BodyFatMax         float64 // body-fat adjustment ceiling (1.5)
	BMIBaseline        float64 // BMI with neutral Vd (22)
	BMISlope           float64 // Vd change per BMI point (0.01)
	BMIMin             float64 // BMI adjustment floor (0.9)
	BMIMax             float64 // BMI adjustment ceiling (1.3)
	FirstPassAgeBase   float64 // age with neutral first-pass efficiency (25)
	FirstPassSlope     float64 // efficiency change per year (0.002)
	FirstPassMin       float64 // first-pass adjustment floor (0.85)
	FirstPassMax       float64 // first-pass adjustment ceiling (1.15)

	// Defensive profile clamps
	MinWeightKg float64 // 30
	MinHeightCm float64 // 100

	// Concentration model
	SingularityNudge float64 // added to ke when ka == ke exactly (1e-5)

	// Schedule simulation
	MinIntervalDays float64 // entries below this interval are skipped (0.01)

	// Calibration estimation
	TroughWindowBeforeDays float64 // window start before the lab day (0.5)
	TroughWindowAfterDays  float64 // window end after the lab day (0.1)
	CalibrationResolution  int     // samples/day for calibration runs (24)
	MinTargetConcentration float64 // denominators below this return 1.0 (0.1)
	RecencyTimeConstant    float64 // e-folding days for lab weighting (14)
	FactorMin              float64 // calibration factor floor (0.1)
	FactorMax              float64 // calibration factor ceiling (5.0)

	// Volume-of-distribution constants per route (L/kg scaled)
	RouteVdFactors  map[model.RouteType]float64
	DefaultVdFactor float64 // used for unrecognized routes (4.0)
}

// DefaultConfig returns the tuned engine constants.
func DefaultConfig() Config {
	return Config{
		InstantAbsorptionKa:  100.0,
		SolverMaxIterations:  15,
		SolverMinKa:          1e-5,
		SolverDerivativeEps:  1e-7,
		SolverConvergenceEps: 1e-5,
		FlipFlopMargin:       0.01,

		LiverEnzymeLimitUL: 40.0,
		LiverSlopePerTenU:  0.02,
		LiverFactorMax:     1.2,
		BodyFatBaselinePct: 22.0,
		BodyFatSlope:       0.008,
		BodyFatMin:         0.8,
		BodyFatMax:         1.5,
		BMIBaseline:        22.0,
		BMISlope:           0.01,
		BMIMin:             0.9,
		BMIMax:             1.3,
		FirstPassAgeBase:   25.0,
		FirstPassSlope:     0.002,
		FirstPassMin:       0.85,
		FirstPassMax:       1.15,

		MinWeightKg: 30.0,
		MinHeightCm: 100.0,

		SingularityNudge: 1e-5,

		MinIntervalDays: 0.01,

		TroughWindowBeforeDays: 0.5,
		TroughWindowAfterDays:  0.1,
		CalibrationResolution:  24,
		MinTargetConcentration: 0.1,
		RecencyTimeConstant:    14.0,
		FactorMin:              0.1,
		FactorMax:              5.0,

		RouteVdFactors: map[model.RouteType]float64{
			model.RouteInjection:    117.0,
			model.RouteOral:         12.0,
			model.RouteTransdermal:  30.0,
			model.RouteAntiAndrogen: 4.0,
			model.RouteSublingual:   12.0,
			model.RouteProgesterone: 12.0,
			model.RouteGnRHAgonist:  117.0,
		},
		DefaultVdFactor: 4.0,
	}
}

// RouteVdFactor looks up the volume-of-distribution constant for a
// route, falling back to the default for unrecognized routes.
func (c *Config) RouteVdFactor(route model.RouteType) float64 {
	if v, ok := c.RouteVdFactors[route]; ok {
		return v
	}
	return c.DefaultVdFactor
}
