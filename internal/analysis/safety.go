package analysis

import (
	"fmt"
	"strings"

	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/model"
)

// DrugStore is the analyzer's read-only view of drug parameters.
type DrugStore interface {
	Get(name string) (*model.DrugRecord, bool)
}

// Analyzer evaluates clinical rules that need drug-record context,
// such as routes and monitoring lists.
type Analyzer struct {
	store DrugStore
}

func NewAnalyzer(store DrugStore) *Analyzer {
	return &Analyzer{store: store}
}

// VTE risk grades.
const (
	VTEGradeLow      = "low"
	VTEGradeModerate = "moderate"
	VTEGradeHigh     = "high"
	VTEGradeVeryHigh = "very high"
)

// VTEScore computes the additive thrombosis risk score: BMI >=25 +1 or
// >=30 +2, smoking +2, age >=40 +1 or >=60 +2, prior VTE +3, surgery
// risk class +1..+3, oral estrogen +1.
func VTEScore(p model.PatientProfile, smoker, historyVTE bool, surgeryRisk model.RiskLevel, oralEstrogen bool) model.VTEAssessment {
	score := 0

	switch bmi := p.BMI(); {
	case bmi >= 30:
		score += 2
	case bmi >= 25:
		score++
	}

	if smoker {
		score += 2
	}

	switch {
	case p.AgeYears >= 60:
		score += 2
	case p.AgeYears >= 40:
		score++
	}

	if historyVTE {
		score += 3
	}

	switch surgeryRisk {
	case model.RiskHigh:
		score += 3
	case model.RiskMedium:
		score += 2
	case model.RiskLow:
		score++
	}

	if oralEstrogen {
		score++
	}

	grade := VTEGradeVeryHigh
	switch {
	case score <= 2:
		grade = VTEGradeLow
	case score <= 4:
		grade = VTEGradeModerate
	case score <= 6:
		grade = VTEGradeHigh
	}

	return model.VTEAssessment{Score: score, Grade: grade}
}

// SafetyInput bundles everything the rule evaluation reads. Stats must
// be in pg/mL.
type SafetyInput struct {
	Profile     model.PatientProfile
	Schedule    []model.ScheduleEntry
	Stats       model.SummaryStats
	Smoker      bool
	HistoryVTE  bool
	Migraine    bool
	SurgeryRisk model.RiskLevel
	OtherMeds   []string
}

// scheduleTraits are the schedule properties the rules key on.
type scheduleTraits struct {
	estrogen       bool // any estrogen route
	oralEstrogen   bool
	progesterone   bool
	combinationAA  bool // anti-androgen or GnRH agonist present
	spironolactone bool
}

func (a *Analyzer) traits(schedule []model.ScheduleEntry) scheduleTraits {
	var tr scheduleTraits
	for _, entry := range schedule {
		drug, ok := a.store.Get(entry.Drug)
		if !ok {
			continue
		}
		switch drug.Route {
		case model.RouteOral:
			tr.oralEstrogen = true
			tr.estrogen = true
		case model.RouteInjection, model.RouteTransdermal, model.RouteSublingual:
			tr.estrogen = true
		case model.RouteProgesterone:
			tr.progesterone = true
		case model.RouteAntiAndrogen, model.RouteGnRHAgonist:
			tr.combinationAA = true
		}
		if strings.Contains(drug.Name, "Spironolactone") {
			tr.spironolactone = true
		}
	}
	return tr
}

// Safety runs the full clinical rule set against a simulated schedule
// and its summary statistics.
func (a *Analyzer) Safety(in SafetyInput) *model.SafetyReport {
	tr := a.traits(in.Schedule)
	p := in.Profile
	stats := in.Stats

	var risks []model.RiskMessage
	add := func(level model.RiskLevel, msg string) {
		risks = append(risks, model.RiskMessage{Level: level, Message: msg})
	}

	if tr.oralEstrogen {
		if p.AgeYears > 35 && in.Smoker {
			add(model.RiskCritical, "Smoking over age 35 combined with oral estrogen carries a critical thrombosis risk. A transdermal route is strongly recommended.")
		} else if in.HistoryVTE {
			add(model.RiskHigh, "History of venous thromboembolism with oral estrogen. A non-oral route and specialist review are recommended.")
		}
	}

	if in.Migraine && tr.oralEstrogen {
		add(model.RiskHigh, "Migraine with oral estrogen raises stroke risk. Consider a transdermal or injectable route.")
	}

	if p.AgeYears >= 15 && p.AgeYears <= 18 {
		add(model.RiskMedium, "Adolescent patient: growth and puberty staging should be followed by a specialist.")
	}

	if stats.PeakPgML > 1500 {
		add(model.RiskHigh, "Peak concentration exceeds 1500 pg/mL. Levels this high add thrombosis risk without additional benefit.")
	}
	if stats.PeakPgML > catalog.AcuteSpikeLimitPgML {
		add(model.RiskMedium, fmt.Sprintf("Peak concentration exceeds the acute-spike limit of %.0f pg/mL. Consider splitting doses or widening the interval.", catalog.AcuteSpikeLimitPgML))
	}

	var reasons []string
	if stats.TroughPgML < 50 {
		reasons = append(reasons, "a low trough")
	}
	if SlopeRisky(stats.MaxSlopePerDay, stats.AveragePgML) {
		reasons = append(reasons, "rapid level changes")
	}
	if len(reasons) > 0 {
		add(model.RiskMedium, fmt.Sprintf("Unstable levels (%s) can drive mood swings. Shorter intervals or split doses flatten the curve.", strings.Join(reasons, ", ")))
	}

	if tr.progesterone {
		add(model.RiskMedium, "Progesterone commonly causes drowsiness and fluid retention; benefit for breast development is not clinically established.")
	}

	if p.AST > liverLimit || p.ALT > liverLimit {
		add(model.RiskHigh, fmt.Sprintf("Liver enzymes elevated (AST %.0f, ALT %.0f U/L). Oral dosing adds hepatic load; clinical review is advised.", p.AST, p.ALT))
	}

	report := &model.SafetyReport{
		Stats:       stats,
		Risks:       risks,
		Monotherapy: monotherapy(stats.TroughPgML, tr.combinationAA),
		BoneRisk:    stats.TroughPgML < 50,
		VTE:         VTEScore(p, in.Smoker, in.HistoryVTE, in.SurgeryRisk, tr.oralEstrogen),
	}
	report.Interactions = a.Interactions(in.Schedule, in.OtherMeds)
	report.Monitoring = a.Monitoring(in.Schedule)
	return report
}

const liverLimit = 40.0

func monotherapy(troughPgML float64, combination bool) *model.MonotherapyStatus {
	switch {
	case troughPgML > 200:
		return &model.MonotherapyStatus{
			Status:  model.MonotherapyAdequate,
			Message: "Trough above 200 pg/mL supports estrogen monotherapy; testosterone suppression is likely.",
		}
	case troughPgML < 100 && combination:
		return &model.MonotherapyStatus{
			Status:  model.MonotherapyCombined,
			Message: "Estrogen trough is below the monotherapy range, but anti-androgen cover is present.",
		}
	case troughPgML < 100:
		return &model.MonotherapyStatus{
			Status:  model.MonotherapyInsufficient,
			Message: "Trough below 100 pg/mL without anti-androgen cover; testosterone suppression is unlikely.",
		}
	default:
		return nil
	}
}
