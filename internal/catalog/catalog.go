// Package catalog embeds the built-in drug parameter database and the
// clinical reference data (target guidelines, surgery planning,
// co-medication interactions) that the analysis layer keys on.
//
// Records returned from the catalog are shared and must be treated as
// read-only; callers that need to modify a record copy it first.
package catalog

import (
	"fmt"
	"sort"

	"github.com/endosim/pk-api/internal/model"
)

// Catalog is the immutable built-in drug database. It satisfies the
// engine's drug store contract.
type Catalog struct {
	drugs map[string]*model.DrugRecord
	names []string
}

// New builds the catalog from the embedded records, validating each
// one. The records are compiled in, so a validation failure is a
// programming error and panics.
func New() *Catalog {
	c := &Catalog{
		drugs: make(map[string]*model.DrugRecord, len(drugRecords)),
		names: make([]string, 0, len(drugRecords)),
	}
	for i := range drugRecords {
		d := &drugRecords[i]
		if err := d.Validate(); err != nil {
			panic(fmt.Sprintf("catalog: invalid record %q: %v", d.Name, err))
		}
		if _, dup := c.drugs[d.Name]; dup {
			panic(fmt.Sprintf("catalog: duplicate record %q", d.Name))
		}
		c.drugs[d.Name] = d
		c.names = append(c.names, d.Name)
	}
	sort.Strings(c.names)
	return c
}

// Get looks up a drug record by its exact name.
func (c *Catalog) Get(name string) (*model.DrugRecord, bool) {
	d, ok := c.drugs[name]
	return d, ok
}

// Names returns all drug names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// All returns all records sorted by name.
func (c *Catalog) All() []*model.DrugRecord {
	out := make([]*model.DrugRecord, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.drugs[name])
	}
	return out
}

// ByRoute returns the records administered by the given route, sorted
// by name.
func (c *Catalog) ByRoute(route model.RouteType) []*model.DrugRecord {
	var out []*model.DrugRecord
	for _, name := range c.names {
		if d := c.drugs[name]; d.Route == route {
			out = append(out, d)
		}
	}
	return out
}

var drugRecords = []model.DrugRecord{
	{
		Name:            "Estradiol Valerate (Progynon Depot)",
		Route:           model.RouteInjection,
		HalfLifeHours:   72,
		TimeToPeakHours: 36,
		Bioavailability: 1.0,
		EsterFactor:     0.76,
		DefaultDoseMg:   10,
		MaxSafeDoseMg:   20,
		Monitoring:      []string{"E2", "T"},
		RiskLevel:       model.RiskLow,
		Description:     "Most common injectable. Short half-life may cause mood swings if intervals are too long.",
	},
	{
		Name:            "Estradiol Enanthate",
		Route:           model.RouteInjection,
		HalfLifeHours:   144,
		TimeToPeakHours: 72,
		Bioavailability: 1.0,
		EsterFactor:     0.72,
		DefaultDoseMg:   10,
		MaxSafeDoseMg:   20,
		Monitoring:      []string{"E2", "T"},
		RiskLevel:       model.RiskLow,
		Description:     "Long half-life suits weekly or biweekly injection.",
	},
	{
		Name:            "Estradiol Cypionate",
		Route:           model.RouteInjection,
		HalfLifeHours:   240,
		TimeToPeakHours: 96,
		Bioavailability: 1.0,
		EsterFactor:     0.70,
		DefaultDoseMg:   5,
		MaxSafeDoseMg:   10,
		Monitoring:      []string{"E2", "T"},
		RiskLevel:       model.RiskLow,
		Description:     "Longest-acting ester with a gentle initial rise. Supply can be limited.",
	},
	{
		Name:            "Estradiol Valerate (Progynova)",
		Route:           model.RouteOral,
		HalfLifeHours:   14,
		TimeToPeakHours: 6,
		Bioavailability: 0.05,
		EsterFactor:     0.76,
		DefaultDoseMg:   2,
		MaxSafeDoseMg:   8,
		Monitoring:      []string{"E2", "T", "LFT"},
		RiskLevel:       model.RiskMedium,
		Metabolism:      model.MetabolismCYP3A4,
		Description:     "Sharp peak within a few hours of ingestion, then rapid washout.",
	},
	{
		Name:            "Estradiol Hemihydrate (Estrofem)",
		Route:           model.RouteOral,
		HalfLifeHours:   18,
		TimeToPeakHours: 3,
		Bioavailability: 0.05,
		EsterFactor:     0.97,
		DefaultDoseMg:   2,
		MaxSafeDoseMg:   8,
		Monitoring:      []string{"E2", "T", "LFT"},
		RiskLevel:       model.RiskMedium,
		Metabolism:      model.MetabolismCYP3A4,
		Description:     "Short half-life but fast absorption. Very large spikes when taken sublingually.",
	},
	{
		Name:            "Sublingual Estradiol (Estrofem)",
		Route:           model.RouteSublingual,
		HalfLifeHours:   12,
		TimeToPeakHours: 1,
		Bioavailability: 0.25,
		EsterFactor:     1.0,
		DefaultDoseMg:   1,
		MaxSafeDoseMg:   6,
		Monitoring:      []string{"E2", "T"},
		RiskLevel:       model.RiskLow,
		Description:     "Absorbed under the tongue. Efficient but highly fluctuating; split doses over the day are recommended.",
	},
	{
		Name:            "Estrogel (Pump)",
		Route:           model.RouteTransdermal,
		HalfLifeHours:   36,
		TimeToPeakHours: 4,
		Bioavailability: 0.10,
		EsterFactor:     1.0,
		DefaultDoseMg:   1.5,
		MaxSafeDoseMg:   5,
		Monitoring:      []string{"E2", "T"},
		RiskLevel:       model.RiskLow,
		Description:     "Bypasses first-pass metabolism, lowest thrombosis risk. Requires daily application.",
	},
	{
		Name:            "Cyproterone Acetate (Androcur)",
		Route:           model.RouteAntiAndrogen,
		HalfLifeHours:   40,
		TimeToPeakHours: 3,
		Bioavailability: 1.0,
		EsterFactor:     1.0,
		DefaultDoseMg:   12.5,
		MaxSafeDoseMg:   12.5,
		Monitoring:      []string{"Prolactin", "Liver Function (LFT)"},
		RiskLevel:       model.RiskMedium,
		Metabolism:      model.MetabolismCYP3A4,
		Description:     "Potent anti-androgen, effective at low doses. Meningioma and hyperprolactinemia risk at sustained high doses.",
	},
	{
		Name:            "Spironolactone",
		Route:           model.RouteAntiAndrogen,
		HalfLifeHours:   2,
		TimeToPeakHours: 1,
		Bioavailability: 1.0,
		EsterFactor:     1.0,
		DefaultDoseMg:   50,
		MaxSafeDoseMg:   200,
		Monitoring:      []string{"Potassium (K+)", "Renal Function (eGFR)", "Blood Pressure"},
		RiskLevel:       model.RiskLow,
		Description:     "Potassium-sparing diuretic with anti-androgen activity. Regular electrolyte checks needed.",
	},
	{
		Name:            "Micronized Progesterone (Utrogestan)",
		Route:           model.RouteProgesterone,
		HalfLifeHours:   18,
		TimeToPeakHours: 2.5,
		Bioavailability: 0.08,
		EsterFactor:     1.0,
		DefaultDoseMg:   100,
		MaxSafeDoseMg:   200,
		Monitoring:      []string{"Lipid Profile (HDL)", "Blood Pressure", "Weight"},
		RiskLevel:       model.RiskMedium,
		Metabolism:      model.MetabolismCYP3A4,
		Description:     "Bioidentical progesterone, usually taken at bedtime. May cause drowsiness or edema.",
	},
	{
		Name:            "Leuprorelin (Lupron Depot - 1M)",
		Route:           model.RouteGnRHAgonist,
		HalfLifeHours:   336,
		TimeToPeakHours: 4,
		Bioavailability: 1.0,
		EsterFactor:     1.0,
		DefaultDoseMg:   3.75,
		MaxSafeDoseMg:   11.25,
		Monitoring:      []string{"LH", "FSH", "Testosterone", "Estradiol", "Bone Density (DXA)"},
		RiskLevel:       model.RiskLow,
		Description:     "One-month depot GnRH agonist. Transient flare effect in the first one to two weeks.",
	},
	{
		Name:            "Triptorelin (Decapeptyl - 1M)",
		Route:           model.RouteGnRHAgonist,
		HalfLifeHours:   336,
		TimeToPeakHours: 3,
		Bioavailability: 1.0,
		EsterFactor:     1.0,
		DefaultDoseMg:   3.75,
		MaxSafeDoseMg:   11.25,
		Monitoring:      []string{"LH", "FSH", "Testosterone", "Estradiol"},
		RiskLevel:       model.RiskLow,
		Description:     "One-month depot GnRH agonist for stable puberty suppression.",
	},
}
