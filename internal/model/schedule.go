package model

// ScheduleEntry describes one recurring dose in a dosing plan.
// The drug key is the only hard-required field; entries with an
// interval below the floor or an unknown drug are skipped during
// simulation rather than rejected.
type ScheduleEntry struct {
	Drug         string  `json:"drug" binding:"required"`
	DoseMg       float64 `json:"dose_mg" binding:"gte=0"`
	IntervalDays float64 `json:"interval_days" binding:"gte=0"`
	Cycling      bool    `json:"cycling"`
	OffsetDays   float64 `json:"offset_days" binding:"gte=0"`
	DurationDays int     `json:"duration_days" binding:"gte=0"`
}

// SimulationResult pairs a time axis in days with the total
// concentration in pg/mL at each sample. Both slices have equal
// length and ascend in time.
type SimulationResult struct {
	TimeDays       []float64 `json:"time_days"`
	Concentrations []float64 `json:"concentrations_pg_ml"`
}

// Len returns the number of samples.
func (r *SimulationResult) Len() int {
	return len(r.TimeDays)
}

type SimulateRequest struct {
	Profile        *PatientProfile    `json:"profile"`
	Schedule       []ScheduleEntry    `json:"schedule" binding:"dive"`
	Days           int                `json:"days" binding:"omitempty,gte=1,lte=365"`
	Resolution     int                `json:"resolution" binding:"omitempty,gte=1,lte=1000"`
	Factors        CalibrationFactors `json:"calibration_factors"`
	StopDay        *float64           `json:"stop_day" binding:"omitempty,gte=0"`
	ResumeDay      *float64           `json:"resume_day" binding:"omitempty,gte=0"`
	Unit           string             `json:"unit" binding:"omitempty,oneof=pg/mL pmol/L"`
	IncludeStats   bool               `json:"include_stats"`
	LabPoints      []LabRecord        `json:"lab_points" binding:"omitempty,dive"`
}

// SimulateResponse carries the simulated curve in the requested unit
// plus the optional derived blocks. Stats and accuracy are always
// reported in pg/mL.
type SimulateResponse struct {
	Unit           string          `json:"unit"`
	TimeDays       []float64       `json:"time_days"`
	Concentrations []float64       `json:"concentrations"`
	Stats          *SummaryStats   `json:"stats,omitempty"`
	Accuracy       *AccuracyReport `json:"accuracy,omitempty"`
}
