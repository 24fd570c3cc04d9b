package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/model"
)

func TestTokenExchange(t *testing.T) {
	w, env := doRequest(t, http.MethodPost, "/api/v1/auth/token", map[string]string{"api_key": apiKey}, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	var tokens model.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.False(t, tokens.ExpiresAt.IsZero())
}

func TestTokenExchangeRejectsWrongKey(t *testing.T) {
	w, env := doRequest(t, http.MethodPost, "/api/v1/auth/token", map[string]string{"api_key": "not-the-right-key-at-all"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestTokenExchangeRequiresKey(t *testing.T) {
	w, _ := doRequest(t, http.MethodPost, "/api/v1/auth/token", map[string]string{}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRouteRequiresToken(t *testing.T) {
	body := map[string]interface{}{
		"route":           "Oral",
		"half_life_hours": 12.0,
		"ester_factor":    0.8,
	}

	w, env := doRequest(t, http.MethodPut, "/api/v1/drugs/Unauthorized%20Drug", body, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", env.Status)

	w, _ = doRequest(t, http.MethodDelete, "/api/v1/drugs/Unauthorized%20Drug", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRouteRejectsForgedToken(t *testing.T) {
	w, _ := doRequest(t, http.MethodDelete, "/api/v1/drugs/Spironolactone", nil, "definitely.not.ajwt")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// The issued token must open the admin routes it was minted for.
func TestTokenOpensAdminRoute(t *testing.T) {
	token := adminToken(t)

	body := map[string]interface{}{
		"route":              "Oral",
		"half_life_hours":    10.0,
		"time_to_peak_hours": 4.0,
		"bioavailability":    0.05,
		"ester_factor":       0.8,
	}

	w, env := doRequest(t, http.MethodPut, "/api/v1/drugs/Token%20Flow%20Drug", body, token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	w, _ = doRequest(t, http.MethodDelete, "/api/v1/drugs/Token%20Flow%20Drug", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
}
