package model

// PatientProfile carries the physiology inputs for a simulation.
// The engine clamps weight and height to floor values; zero-valued
// fields are filled from the defaults at the API boundary.
type PatientProfile struct {
	WeightKg   float64 `json:"weight_kg"`
	HeightCm   float64 `json:"height_cm"`
	AgeYears   int     `json:"age_years"`
	AST        float64 `json:"ast"`
	ALT        float64 `json:"alt"`
	BodyFatPct float64 `json:"body_fat_pct"`
}

// DefaultPatientProfile returns the reference physiology used when the
// caller supplies no profile.
func DefaultPatientProfile() PatientProfile {
	return PatientProfile{
		WeightKg:   60,
		HeightCm:   170,
		AgeYears:   25,
		AST:        20,
		ALT:        20,
		BodyFatPct: 22,
	}
}

// WithDefaults fills zero-valued fields from DefaultPatientProfile.
func (p PatientProfile) WithDefaults() PatientProfile {
	def := DefaultPatientProfile()
	if p.WeightKg == 0 {
		p.WeightKg = def.WeightKg
	}
	if p.HeightCm == 0 {
		p.HeightCm = def.HeightCm
	}
	if p.AgeYears == 0 {
		p.AgeYears = def.AgeYears
	}
	if p.AST == 0 {
		p.AST = def.AST
	}
	if p.ALT == 0 {
		p.ALT = def.ALT
	}
	if p.BodyFatPct == 0 {
		p.BodyFatPct = def.BodyFatPct
	}
	return p
}

// BMI derives the body mass index from weight and height.
func (p PatientProfile) BMI() float64 {
	h := p.HeightCm / 100
	if h <= 0 {
		return 0
	}
	return p.WeightKg / (h * h)
}
