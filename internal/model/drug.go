package model

import "fmt"

// RouteType is the administration route of a drug. It selects the
// volume-of-distribution constant and the calibration factor applied
// during simulation.
type RouteType string

const (
	RouteInjection    RouteType = "Injection"
	RouteOral         RouteType = "Oral"
	RouteTransdermal  RouteType = "Transdermal"
	RouteSublingual   RouteType = "Sublingual"
	RouteAntiAndrogen RouteType = "Anti-Androgen"
	RouteProgesterone RouteType = "Progesterone"
	RouteGnRHAgonist  RouteType = "GnRH-Agonist"
)

var routeTypes = map[RouteType]bool{
	RouteInjection:    true,
	RouteOral:         true,
	RouteTransdermal:  true,
	RouteSublingual:   true,
	RouteAntiAndrogen: true,
	RouteProgesterone: true,
	RouteGnRHAgonist:  true,
}

func (r RouteType) Valid() bool {
	return routeTypes[r]
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// MetabolismCYP3A4 marks drugs metabolized through the CYP3A4 pathway,
// which the interaction checker keys on.
const MetabolismCYP3A4 = "CYP3A4_SUBSTRATE"

// DrugRecord holds the per-drug pharmacokinetic constants.
// Records are immutable during a simulation call.
type DrugRecord struct {
	Name            string    `db:"name" json:"name"`
	Route           RouteType `db:"route" json:"route"`
	HalfLifeHours   float64   `db:"half_life_hours" json:"half_life_hours"`
	TimeToPeakHours float64   `db:"time_to_peak_hours" json:"time_to_peak_hours"`
	Bioavailability float64   `db:"bioavailability" json:"bioavailability"`
	EsterFactor     float64   `db:"ester_factor" json:"ester_factor"`
	DefaultDoseMg   float64   `db:"default_dose_mg" json:"default_dose_mg"`
	MaxSafeDoseMg   float64   `db:"max_safe_dose_mg" json:"max_safe_dose_mg"`
	Monitoring      []string  `db:"-" json:"monitoring,omitempty"`
	RiskLevel       RiskLevel `db:"risk_level" json:"risk_level,omitempty"`
	Metabolism      string    `db:"metabolism" json:"metabolism,omitempty"`
	Description     string    `db:"description" json:"description,omitempty"`
}

// Validate enforces the load-time invariants on a drug record.
func (d *DrugRecord) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("drug name is required")
	}
	if !d.Route.Valid() {
		return fmt.Errorf("unknown route type %q", d.Route)
	}
	if d.HalfLifeHours <= 0 {
		return fmt.Errorf("half-life must be positive, got %v", d.HalfLifeHours)
	}
	if d.TimeToPeakHours < 0 {
		return fmt.Errorf("time-to-peak must be non-negative, got %v", d.TimeToPeakHours)
	}
	if d.Bioavailability < 0 || d.Bioavailability > 1 {
		return fmt.Errorf("bioavailability must be between 0 and 1, got %v", d.Bioavailability)
	}
	if d.EsterFactor <= 0 || d.EsterFactor > 1 {
		return fmt.Errorf("ester factor must be in (0, 1], got %v", d.EsterFactor)
	}
	return nil
}

type UpsertDrugRequest struct {
	Route           RouteType `json:"route" binding:"required,route"`
	HalfLifeHours   float64   `json:"half_life_hours" binding:"required,gt=0"`
	TimeToPeakHours float64   `json:"time_to_peak_hours" binding:"gte=0"`
	Bioavailability float64   `json:"bioavailability" binding:"gte=0,lte=1"`
	EsterFactor     float64   `json:"ester_factor" binding:"required,gt=0,lte=1"`
	DefaultDoseMg   float64   `json:"default_dose_mg" binding:"gte=0"`
	MaxSafeDoseMg   float64   `json:"max_safe_dose_mg" binding:"gte=0"`
	Monitoring      []string  `json:"monitoring"`
	RiskLevel       RiskLevel `json:"risk_level" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Metabolism      string    `json:"metabolism"`
	Description     string    `json:"description"`
}

// ToRecord builds a DrugRecord named name from the request.
func (r *UpsertDrugRequest) ToRecord(name string) *DrugRecord {
	return &DrugRecord{
		Name:            name,
		Route:           r.Route,
		HalfLifeHours:   r.HalfLifeHours,
		TimeToPeakHours: r.TimeToPeakHours,
		Bioavailability: r.Bioavailability,
		EsterFactor:     r.EsterFactor,
		DefaultDoseMg:   r.DefaultDoseMg,
		MaxSafeDoseMg:   r.MaxSafeDoseMg,
		Monitoring:      r.Monitoring,
		RiskLevel:       r.RiskLevel,
		Metabolism:      r.Metabolism,
		Description:     r.Description,
	}
}
