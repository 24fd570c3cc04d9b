package model

// SummaryStats condenses a simulated curve into its clinically
// relevant numbers. Trough and average are taken over the steady-state
// window, not the initial rise or post-cessation decay.
type SummaryStats struct {
	PeakPgML       float64 `json:"peak_pg_ml"`
	TroughPgML     float64 `json:"trough_pg_ml"`
	AveragePgML    float64 `json:"average_pg_ml"`
	FluctuationPct float64 `json:"fluctuation_pct"`
	MaxSlopePerDay float64 `json:"max_slope_pg_ml_per_day"`
}

// AccuracyReport grades how well the simulated curve matches measured
// lab values.
type AccuracyReport struct {
	RMSE        float64 `json:"rmse_pg_ml"`
	Reliability string  `json:"reliability"` // excellent, good, poor
	LabCount    int     `json:"lab_count"`
}

// SafetyReport is the combined output of the clinical safety analysis.
type SafetyReport struct {
	Stats        SummaryStats         `json:"stats"`
	Risks        []RiskMessage        `json:"risks"`
	Monotherapy  *MonotherapyStatus   `json:"monotherapy,omitempty"`
	BoneRisk     bool                 `json:"bone_density_risk"`
	VTE          VTEAssessment        `json:"vte"`
	Interactions []InteractionWarning `json:"interactions,omitempty"`
	Monitoring   []MonitoringItem     `json:"monitoring,omitempty"`
}
