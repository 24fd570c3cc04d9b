package model

// Guideline is one published target range for hormone levels.
// Zero-valued bounds mean the guideline does not constrain that side.
type Guideline struct {
	Key                 string  `json:"key"`
	Source              string  `json:"source"`
	E2MinPgML           float64 `json:"e2_min_pg_ml,omitempty"`
	E2MaxPgML           float64 `json:"e2_max_pg_ml,omitempty"`
	TestosteroneMaxNgDL float64 `json:"t_max_ng_dl,omitempty"`
	Description         string  `json:"description,omitempty"`
}

// LiverLimits is the upper bound of the healthy transaminase range.
type LiverLimits struct {
	ASTMaxUL float64 `json:"ast_max_u_l"`
	ALTMaxUL float64 `json:"alt_max_u_l"`
}

// SurgeryGuideline carries the pre-operative planning data for one
// procedure class.
type SurgeryGuideline struct {
	Name             string    `json:"name"`
	Risk             RiskLevel `json:"risk"`
	CessationWeeks   string    `json:"cessation_weeks"`
	MinTherapyMonths int       `json:"min_therapy_months,omitempty"`
	Description      string    `json:"description"`
}

// InteractionKind classifies how a co-medication interferes with the
// hormone regimen.
type InteractionKind string

const (
	InteractionCYP3A4Inhibitor  InteractionKind = "CYP3A4_INHIBITOR"
	InteractionCYP3A4Inducer    InteractionKind = "CYP3A4_INDUCER"
	InteractionPotassiumSparing InteractionKind = "K_SPARING"
	InteractionRenalStress      InteractionKind = "RENAL_STRESS"
)

// Interactor is a co-medication known to interact with the regimen.
// Potency is the expected concentration multiplier for CYP3A4
// interactions and zero otherwise.
type Interactor struct {
	Name        string          `json:"name"`
	Kind        InteractionKind `json:"kind"`
	Potency     float64         `json:"potency,omitempty"`
	Description string          `json:"description"`
}

// GuidelineSet bundles all static clinical reference data served by
// the guidelines endpoint.
type GuidelineSet struct {
	Targets     []Guideline        `json:"targets"`
	Liver       LiverLimits        `json:"liver"`
	Surgery     []SurgeryGuideline `json:"surgery"`
	Interactors []Interactor       `json:"interactors"`
}
