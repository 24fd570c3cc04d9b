package pk

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// normalizeProfile clamps weight and height to their floors.
// All physiology factors operate on the clamped profile.
func (e *Engine) normalizeProfile(p model.PatientProfile) model.PatientProfile {
	if p.WeightKg < e.cfg.MinWeightKg {
		p.WeightKg = e.cfg.MinWeightKg
	}
	if p.HeightCm < e.cfg.MinHeightCm {
		p.HeightCm = e.cfg.MinHeightCm
	}
	return p
}

// LiverFactor models reduced hepatic clearance at elevated AST/ALT:
// each 10 U/L above the limit raises circulating levels by the
// configured slope, capped at LiverFactorMax.
func (e *Engine) LiverFactor(p model.PatientProfile) float64 {
	cfg := &e.cfg
	limit := cfg.LiverEnzymeLimitUL
	if p.AST <= limit && p.ALT <= limit {
		return 1.0
	}
	excess := math.Max(p.AST, p.ALT) - limit
	factor := 1.0 + (excess/10.0)*cfg.LiverSlopePerTenU
	return math.Min(factor, cfg.LiverFactorMax)
}

// BodyFatAdjustment scales the volume of distribution for lipophilic
// compounds by body-fat percentage.
func (e *Engine) BodyFatAdjustment(p model.PatientProfile) float64 {
	cfg := &e.cfg
	adj := 1.0 + (p.BodyFatPct-cfg.BodyFatBaselinePct)*cfg.BodyFatSlope
	return clamp(adj, cfg.BodyFatMin, cfg.BodyFatMax)
}

// BMIAdjustment scales the volume of distribution by BMI, computed on
// the clamped profile.
func (e *Engine) BMIAdjustment(p model.PatientProfile) float64 {
	cfg := &e.cfg
	bmi := e.normalizeProfile(p).BMI()
	adj := 1.0 + (bmi-cfg.BMIBaseline)*cfg.BMISlope
	return clamp(adj, cfg.BMIMin, cfg.BMIMax)
}

// FirstPassFactor models age-related change in hepatic first-pass
// metabolism. Only routes that traverse the gut wall (oral tablets
// and oral anti-androgens) are affected.
func (e *Engine) FirstPassFactor(p model.PatientProfile, route model.RouteType) float64 {
	if route != model.RouteOral && route != model.RouteAntiAndrogen {
		return 1.0
	}
	cfg := &e.cfg
	adj := 1.0 + (float64(p.AgeYears)-cfg.FirstPassAgeBase)*cfg.FirstPassSlope
	return clamp(adj, cfg.FirstPassMin, cfg.FirstPassMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
