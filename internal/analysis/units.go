// Package analysis derives clinical findings from simulated
// concentration curves: summary statistics, lab-fit accuracy, VTE
// scoring, safety rules, co-medication interactions, and monitoring
// requirements. It consumes engine output and never runs simulations
// itself.
package analysis

// PmolPerPg converts estradiol pg/mL to pmol/L (molar mass
// 272.38 g/mol).
const PmolPerPg = 3.6713

// Unit labels accepted by the API.
const (
	UnitPgML  = "pg/mL"
	UnitPmolL = "pmol/L"
)

// PgToPmol converts an estradiol level from pg/mL to pmol/L.
func PgToPmol(pgML float64) float64 {
	return pgML * PmolPerPg
}

// PmolToPg converts an estradiol level from pmol/L to pg/mL.
func PmolToPg(pmolL float64) float64 {
	return pmolL / PmolPerPg
}

// ConvertSeries scales a pg/mL series into the requested unit,
// returning the input slice untouched for pg/mL.
func ConvertSeries(pgML []float64, unit string) []float64 {
	if unit != UnitPmolL {
		return pgML
	}
	out := make([]float64, len(pgML))
	for i, v := range pgML {
		out[i] = v * PmolPerPg
	}
	return out
}
