package pk

import (
	"math"

	"github.com/endosim/pk-api/internal/model"
)

// doseCurve is a single-dose Bateman curve with its parameters
// resolved: C(t) = coeff * (e^(-ke*t) - e^(-ka*t)) for t in hours
// since the dose.
type doseCurve struct {
	coeff float64
	ka    float64
	ke    float64
}

// at evaluates the curve at an offset in hours since the dose,
// floored at zero. Negative offsets also evaluate to zero.
func (c doseCurve) at(hoursSinceDose float64) float64 {
	conc := c.coeff * (math.Exp(-c.ke*hoursSinceDose) - math.Exp(-c.ka*hoursSinceDose))
	if conc < 0 {
		return 0
	}
	return conc
}

// doseCurveFor resolves the Bateman coefficient for one dose of a
// drug given the patient physiology:
//
//	Vd      = weight * routeVd * bodyFatAdj * bmiAdj
//	F'      = F * firstPassAdj * liverFactor
//	dose_ng = dose_mg * F' * esterFactor * 1e6
//	coeff   = dose_ng * ka / (Vd * (ka - ke))
//
// ka == ke is nudged apart to avoid the removable singularity.
func (e *Engine) doseCurveFor(d *model.DrugRecord, doseMg, ka, ke float64, p model.PatientProfile) doseCurve {
	cfg := &e.cfg
	p = e.normalizeProfile(p)

	vd := p.WeightKg * cfg.RouteVdFactor(d.Route) * e.BodyFatAdjustment(p) * e.BMIAdjustment(p)

	adjustedF := d.Bioavailability * e.FirstPassFactor(p, d.Route) * e.LiverFactor(p)
	effectiveDoseNg := doseMg * adjustedF * d.EsterFactor * 1e6

	if ka == ke {
		ka = ke + cfg.SingularityNudge
	}

	return doseCurve{
		coeff: (effectiveDoseNg * ka) / (vd * (ka - ke)),
		ka:    ka,
		ke:    ke,
	}
}

// Concentration evaluates the single-dose concentration curve at each
// offset in hours since the dose, in pg/mL. Output is non-negative
// and zero at t = 0.
func (e *Engine) Concentration(hoursSinceDose []float64, d *model.DrugRecord, doseMg float64, p model.PatientProfile) []float64 {
	ka, ke := e.RateConstants(d)
	curve := e.doseCurveFor(d, doseMg, ka, ke, p)

	out := make([]float64, len(hoursSinceDose))
	for i, t := range hoursSinceDose {
		out[i] = curve.at(t)
	}
	return out
}
