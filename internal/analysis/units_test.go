package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/endosim/pk-api/internal/analysis"
)

func TestUnitConversionRoundTrip(t *testing.T) {
	assert.InDelta(t, 367.13, analysis.PgToPmol(100), 1e-9)
	assert.InDelta(t, 100.0, analysis.PmolToPg(analysis.PgToPmol(100)), 1e-9)
}

func TestConvertSeries(t *testing.T) {
	in := []float64{0, 100, 250}

	pmol := analysis.ConvertSeries(in, analysis.UnitPmolL)
	assert.Equal(t, []float64{0, 367.13, 917.825}, pmol)

	// pg/mL is the base unit; the series passes through unchanged.
	same := analysis.ConvertSeries(in, analysis.UnitPgML)
	assert.Equal(t, in, same)
}
