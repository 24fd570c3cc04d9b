package model

// Calibration factor bounds. Estimated factors are always clipped
// into this range.
const (
	CalibrationFactorMin = 0.1
	CalibrationFactorMax = 5.0
)

// CalibrationFactors maps a route type to its multiplicative
// correction. Missing routes default to the neutral factor 1.0.
type CalibrationFactors map[RouteType]float64

// Get returns the factor for route, defaulting to 1.0.
func (f CalibrationFactors) Get(route RouteType) float64 {
	if f == nil {
		return 1.0
	}
	if v, ok := f[route]; ok {
		return v
	}
	return 1.0
}

// Clone copies the map so callers can override entries without
// mutating the original.
func (f CalibrationFactors) Clone() CalibrationFactors {
	out := make(CalibrationFactors, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ClampFactor clips v into the allowed calibration range.
func ClampFactor(v float64) float64 {
	if v < CalibrationFactorMin {
		return CalibrationFactorMin
	}
	if v > CalibrationFactorMax {
		return CalibrationFactorMax
	}
	return v
}

// LabRecord is a single measured hormone level, day offsets counted
// from simulation start.
type LabRecord struct {
	Day   float64 `json:"day" binding:"gte=0"`
	Value float64 `json:"value_pg_ml"`
}

type EstimateCalibrationRequest struct {
	Profile     *PatientProfile    `json:"profile"`
	Schedule    []ScheduleEntry    `json:"schedule" binding:"required,dive"`
	Lab         LabRecord          `json:"lab" binding:"required"`
	TargetRoute RouteType          `json:"target_route" binding:"required,route"`
	Factors     CalibrationFactors `json:"current_factors"`
}

type WeightedCalibrationRequest struct {
	Profile     *PatientProfile    `json:"profile"`
	Schedule    []ScheduleEntry    `json:"schedule" binding:"required,dive"`
	History     []LabRecord        `json:"lab_history" binding:"required,dive"`
	TargetRoute RouteType          `json:"target_route" binding:"required,route"`
	Factors     CalibrationFactors `json:"current_factors"`
}

// CalibrationEstimate is the result payload for both estimate
// endpoints and the body of calibration outbox events.
type CalibrationEstimate struct {
	TargetRoute RouteType `json:"target_route"`
	Factor      float64   `json:"factor"`
	LabCount    int       `json:"lab_count"`
	Weighted    bool      `json:"weighted"`
}
