package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/model"
)

func TestListDrugsReturnsCatalog(t *testing.T) {
	w, env := doRequest(t, http.MethodGet, "/api/v1/drugs", nil, "")

	require.Equal(t, http.StatusOK, w.Code)

	var drugs []*model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &drugs))
	assert.GreaterOrEqual(t, len(drugs), 12)

	names := make(map[string]bool, len(drugs))
	for _, d := range drugs {
		names[d.Name] = true
	}
	assert.True(t, names["Spironolactone"])
	assert.True(t, names["Estradiol Valerate (Progynon Depot)"])
}

func TestListDrugsFiltersByRoute(t *testing.T) {
	w, env := doRequest(t, http.MethodGet, "/api/v1/drugs?route=Injection", nil, "")

	require.Equal(t, http.StatusOK, w.Code)

	var drugs []*model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &drugs))
	require.GreaterOrEqual(t, len(drugs), 3)
	for _, d := range drugs {
		assert.Equal(t, model.RouteInjection, d.Route)
	}
}

func TestListDrugsRejectsUnknownRoute(t *testing.T) {
	w, env := doRequest(t, http.MethodGet, "/api/v1/drugs?route=Inhaled", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestGetDrugFromCatalog(t *testing.T) {
	w, env := doRequest(t, http.MethodGet, "/api/v1/drugs/Spironolactone", nil, "")

	require.Equal(t, http.StatusOK, w.Code)

	var drug model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &drug))
	assert.Equal(t, "Spironolactone", drug.Name)
	assert.Equal(t, model.RouteAntiAndrogen, drug.Route)
	assert.Greater(t, drug.HalfLifeHours, 0.0)
}

func TestGetDrugUnknown(t *testing.T) {
	w, env := doRequest(t, http.MethodGet, "/api/v1/drugs/Totally%20Unknown", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "drug not found", env.Message)
}

// Upsert, read back, delete and confirm the override is gone. The
// override must also leave a drug.updated event behind for the worker.
func TestUpsertDrugLifecycle(t *testing.T) {
	token := adminToken(t)
	eventsBefore := len(fx.drugRepo.events)

	body := map[string]interface{}{
		"route":              "Injection",
		"half_life_hours":    590.0,
		"time_to_peak_hours": 96.0,
		"bioavailability":    1.0,
		"ester_factor":       0.72,
		"default_dose_mg":    20.0,
	}

	w, env := doRequest(t, http.MethodPut, "/api/v1/drugs/Estradiol%20Undecylate", body, token)
	require.Equal(t, http.StatusOK, w.Code)

	var stored model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, "Estradiol Undecylate", stored.Name)
	assert.Equal(t, model.RouteInjection, stored.Route)
	assert.Equal(t, 590.0, stored.HalfLifeHours)

	require.Len(t, fx.drugRepo.events, eventsBefore+1)
	assert.Equal(t, model.EventTypeDrugUpdated, fx.drugRepo.events[eventsBefore].EventType)

	w, env = doRequest(t, http.MethodGet, "/api/v1/drugs/Estradiol%20Undecylate", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var fetched model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 0.72, fetched.EsterFactor)

	w, _ = doRequest(t, http.MethodDelete, "/api/v1/drugs/Estradiol%20Undecylate", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, http.MethodGet, "/api/v1/drugs/Estradiol%20Undecylate", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertDrugRejectsInvalidBody(t *testing.T) {
	token := adminToken(t)

	body := map[string]interface{}{
		"route":           "Oral",
		"half_life_hours": 12.0,
		"ester_factor":    1.5,
	}

	w, env := doRequest(t, http.MethodPut, "/api/v1/drugs/Bad%20Factor", body, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestDeleteDrugWithoutOverride(t *testing.T) {
	token := adminToken(t)

	w, env := doRequest(t, http.MethodDelete, "/api/v1/drugs/Spironolactone", nil, token)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "drug override not found", env.Message)
}
