package catalog

import "github.com/endosim/pk-api/internal/model"

// Guideline keys.
const (
	GuidelineWPATH       = "WPATH_SOC8"
	GuidelineEndocrine   = "ENDOCRINE_SOCIETY"
	GuidelineMonotherapy = "MONOTHERAPY"
	GuidelineSurgery     = "SURGERY_SAFETY"
	GuidelineAcuteSpike  = "ACUTE_SPIKE"
)

// AcuteSpikeLimitPgML is the peak level above which dose dumping is
// flagged by the safety analysis.
const AcuteSpikeLimitPgML = 800.0

var targetGuidelines = []model.Guideline{
	{
		Key:                 GuidelineWPATH,
		Source:              "WPATH SOC 8 (Standard)",
		E2MinPgML:           100,
		E2MaxPgML:           200,
		TestosteroneMaxNgDL: 50,
	},
	{
		Key:       GuidelineEndocrine,
		Source:    "Endocrine Society (Conservative)",
		E2MinPgML: 100,
		E2MaxPgML: 200,
	},
	{
		Key:       GuidelineMonotherapy,
		Source:    "E2 Monotherapy (High Dose)",
		E2MinPgML: 200,
		E2MaxPgML: 300,
	},
	{
		Key:         GuidelineSurgery,
		Source:      "Pre-op Safety (General)",
		E2MaxPgML:   50,
		Description: "Pre-operative target that minimizes thrombosis risk.",
	},
	{
		Key:         GuidelineAcuteSpike,
		Source:      "Clinical Safety (Dose Dumping)",
		E2MaxPgML:   AcuteSpikeLimitPgML,
		Description: "Adverse-effect risk from a rapid concentration rise.",
	},
}

var liverLimits = model.LiverLimits{ASTMaxUL: 40, ALTMaxUL: 40}

var surgeryGuidelines = []model.SurgeryGuideline{
	{
		Name:             "Vaginoplasty (SRS)",
		Risk:             model.RiskHigh,
		CessationWeeks:   "2-4",
		MinTherapyMonths: 6,
		Description:      "High VTE risk due to long operating time and post-operative immobility. At least six months of hormone therapy is recommended beforehand.",
	},
	{
		Name:             "Breast Augmentation",
		Risk:             model.RiskMedium,
		CessationWeeks:   "1-2",
		MinTherapyMonths: 12,
		Description:      "General anesthesia, but the procedure is short and early mobilization is possible. Cessation one to two weeks prior is generally recommended.",
	},
	{
		Name:           "Facial Feminization Surgery (FFS)",
		Risk:           model.RiskMedium,
		CessationWeeks: "1-2",
		Description:    "Follows general anesthesia guidelines. Instructions vary by surgeon for edema management.",
	},
	{
		Name:             "Orchiectomy",
		Risk:             model.RiskLow,
		CessationWeeks:   "0-1",
		MinTherapyMonths: 6,
		Description:      "Short procedure, but at least six months of hormone therapy is recommended beforehand.",
	},
	{
		Name:           "Other (General Anesthesia)",
		Risk:           model.RiskMedium,
		CessationWeeks: "2",
		Description:    "Cessation two weeks prior per general anesthesia guidelines.",
	},
}

var interactors = []model.Interactor{
	{
		Name:        "Grapefruit",
		Kind:        model.InteractionCYP3A4Inhibitor,
		Potency:     1.3,
		Description: "Gut CYP3A4 inhibition can raise circulating levels.",
	},
	{
		Name:        "Ketoconazole",
		Kind:        model.InteractionCYP3A4Inhibitor,
		Potency:     1.5,
		Description: "Strong CYP3A4 inhibitor.",
	},
	{
		Name:        "Erythromycin",
		Kind:        model.InteractionCYP3A4Inhibitor,
		Potency:     1.2,
		Description: "Slowed metabolism raises concentration.",
	},
	{
		Name:        "Rifampin",
		Kind:        model.InteractionCYP3A4Inducer,
		Potency:     0.5,
		Description: "Very strong enzyme inducer. Hormone effect can drop sharply.",
	},
	{
		Name:        "Carbamazepine",
		Kind:        model.InteractionCYP3A4Inducer,
		Potency:     0.7,
		Description: "Hepatic enzyme induction speeds hormone clearance.",
	},
	{
		Name:        "St. John's Wort",
		Kind:        model.InteractionCYP3A4Inducer,
		Potency:     0.8,
		Description: "Herbal antidepressant that lowers estrogen levels.",
	},
	{
		Name:        "ACE Inhibitors",
		Kind:        model.InteractionPotassiumSparing,
		Description: "Hyperkalemia risk when combined with spironolactone.",
	},
	{
		Name:        "NSAIDs (long-term)",
		Kind:        model.InteractionRenalStress,
		Description: "Potassium excretion can fall under renal strain.",
	},
}

// Guidelines returns the full static clinical reference set.
func Guidelines() model.GuidelineSet {
	return model.GuidelineSet{
		Targets:     append([]model.Guideline(nil), targetGuidelines...),
		Liver:       liverLimits,
		Surgery:     append([]model.SurgeryGuideline(nil), surgeryGuidelines...),
		Interactors: append([]model.Interactor(nil), interactors...),
	}
}

// Interactor looks up one co-medication by its exact name.
func Interactor(name string) (*model.Interactor, bool) {
	for i := range interactors {
		if interactors[i].Name == name {
			return &interactors[i], true
		}
	}
	return nil, false
}
