package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/model"
)

// A non-positive lab value cannot be reconciled, so the estimator
// falls back to the neutral factor instead of failing the request.
func TestEstimateNeutralFactor(t *testing.T) {
	eventsBefore := fx.outbox.count()

	w, env := doRequest(t, http.MethodPost, "/api/v1/calibrations/estimate", map[string]interface{}{
		"schedule":     injectionSchedule(),
		"lab":          map[string]interface{}{"day": 14.0, "value_pg_ml": 0.0},
		"target_route": "Injection",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)

	var est model.CalibrationEstimate
	require.NoError(t, json.Unmarshal(env.Data, &est))
	assert.Equal(t, model.RouteInjection, est.TargetRoute)
	assert.Equal(t, 1.0, est.Factor)
	assert.Equal(t, 1, est.LabCount)
	assert.False(t, est.Weighted)

	require.Equal(t, eventsBefore+1, fx.outbox.count())
	assert.Equal(t, model.EventTypeCalibrationEstimated, fx.outbox.last().EventType)
}

func TestEstimateSolvesFactor(t *testing.T) {
	w, env := doRequest(t, http.MethodPost, "/api/v1/calibrations/estimate", map[string]interface{}{
		"schedule":     injectionSchedule(),
		"lab":          map[string]interface{}{"day": 14.0, "value_pg_ml": 120.0},
		"target_route": "Injection",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)

	var est model.CalibrationEstimate
	require.NoError(t, json.Unmarshal(env.Data, &est))
	assert.GreaterOrEqual(t, est.Factor, 0.1)
	assert.LessOrEqual(t, est.Factor, 5.0)
}

func TestEstimateWeighted(t *testing.T) {
	w, env := doRequest(t, http.MethodPost, "/api/v1/calibrations/weighted", map[string]interface{}{
		"schedule": injectionSchedule(),
		"lab_history": []map[string]interface{}{
			{"day": 14.0, "value_pg_ml": 90.0},
			{"day": 28.0, "value_pg_ml": 110.0},
			{"day": 42.0, "value_pg_ml": 130.0},
		},
		"target_route": "Injection",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)

	var est model.CalibrationEstimate
	require.NoError(t, json.Unmarshal(env.Data, &est))
	assert.Equal(t, 3, est.LabCount)
	assert.True(t, est.Weighted)
	assert.GreaterOrEqual(t, est.Factor, 0.1)
	assert.LessOrEqual(t, est.Factor, 5.0)
}

func TestEstimateRejectsUnknownTargetRoute(t *testing.T) {
	w, env := doRequest(t, http.MethodPost, "/api/v1/calibrations/estimate", map[string]interface{}{
		"schedule":     injectionSchedule(),
		"lab":          map[string]interface{}{"day": 14.0, "value_pg_ml": 120.0},
		"target_route": "Inhaled",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestEstimateWeightedRequiresHistory(t *testing.T) {
	w, _ := doRequest(t, http.MethodPost, "/api/v1/calibrations/weighted", map[string]interface{}{
		"schedule":     injectionSchedule(),
		"target_route": "Injection",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
