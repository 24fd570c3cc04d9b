package model

// SafetyRequest drives the combined clinical safety analysis: it
// simulates the schedule, derives summary statistics, and evaluates
// the risk rules against them.
type SafetyRequest struct {
	Profile     *PatientProfile    `json:"profile"`
	Schedule    []ScheduleEntry    `json:"schedule" binding:"required,dive"`
	Days        int                `json:"days" binding:"omitempty,gte=1,lte=365"`
	Resolution  int                `json:"resolution" binding:"omitempty,gte=1,lte=1000"`
	Factors     CalibrationFactors `json:"calibration_factors"`
	Smoker      bool               `json:"smoker"`
	HistoryVTE  bool               `json:"history_vte"`
	Migraine    bool               `json:"migraine"`
	SurgeryRisk RiskLevel          `json:"surgery_risk" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	OtherMeds   []string           `json:"other_meds"`
}

// RiskMessage is one finding from the safety analysis.
type RiskMessage struct {
	Level   RiskLevel `json:"level"`
	Message string    `json:"message"`
}

// Monotherapy status values.
const (
	MonotherapyAdequate     = "adequate"
	MonotherapyCombined     = "combined"
	MonotherapyInsufficient = "insufficient"
)

// MonotherapyStatus reports whether the trough level supports
// estrogen monotherapy.
type MonotherapyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// InteractionWarning flags a co-medication that interferes with the
// current schedule.
type InteractionWarning struct {
	Level   RiskLevel `json:"level"`
	Med     string    `json:"med"`
	Message string    `json:"message"`
}

// MonitoringItem lists the recommended lab work for one drug.
type MonitoringItem struct {
	Drug  string   `json:"drug"`
	Exams []string `json:"exams"`
}

// VTEAssessment is the thrombosis risk score with its grade.
type VTEAssessment struct {
	Score int    `json:"score"`
	Grade string `json:"grade"`
}
