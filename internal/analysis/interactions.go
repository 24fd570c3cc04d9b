package analysis

import (
	"fmt"

	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/model"
)

// Interactions checks the co-medication list against the schedule.
// CYP3A4 interactors only matter when an estrogen is on board;
// potassium-sparing and renal-stress medications only matter alongside
// spironolactone. Unknown medication names are ignored.
func (a *Analyzer) Interactions(schedule []model.ScheduleEntry, otherMeds []string) []model.InteractionWarning {
	if len(otherMeds) == 0 {
		return nil
	}

	tr := a.traits(schedule)

	var warnings []model.InteractionWarning
	for _, med := range otherMeds {
		in, ok := catalog.Interactor(med)
		if !ok {
			continue
		}

		if tr.estrogen {
			switch in.Kind {
			case model.InteractionCYP3A4Inhibitor:
				warnings = append(warnings, model.InteractionWarning{
					Level:   model.RiskMedium,
					Med:     in.Name,
					Message: fmt.Sprintf("%s inhibits CYP3A4 and can raise estrogen levels by roughly %.0f%%. Watch for estrogenic side effects.", in.Name, (in.Potency-1)*100),
				})
			case model.InteractionCYP3A4Inducer:
				warnings = append(warnings, model.InteractionWarning{
					Level:   model.RiskHigh,
					Med:     in.Name,
					Message: fmt.Sprintf("%s induces CYP3A4 and can cut estrogen exposure to roughly %.0f%% of normal. Levels may fall below target.", in.Name, in.Potency*100),
				})
			}
		}

		if tr.spironolactone {
			switch in.Kind {
			case model.InteractionPotassiumSparing, model.InteractionRenalStress:
				warnings = append(warnings, model.InteractionWarning{
					Level:   model.RiskCritical,
					Med:     in.Name,
					Message: fmt.Sprintf("%s with spironolactone raises hyperkalemia risk. Potassium and renal function need close monitoring.", in.Name),
				})
			}
		}
	}
	return warnings
}
