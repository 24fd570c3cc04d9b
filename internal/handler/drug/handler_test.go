package drug

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endosim/pk-api/internal/middleware"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	apperrors "github.com/endosim/pk-api/pkg/errors"
)

type fakeService struct {
	records  []*model.DrugRecord
	err      error
	gotRoute model.RouteType
	gotName  string
	gotReq   *model.UpsertDrugRequest
	deleted  []string
}

func (f *fakeService) List(ctx context.Context, route model.RouteType) ([]*model.DrugRecord, error) {
	f.gotRoute = route
	return f.records, f.err
}

func (f *fakeService) Get(ctx context.Context, name string) (*model.DrugRecord, error) {
	f.gotName = name
	if f.err != nil {
		return nil, f.err
	}
	return f.records[0], nil
}

func (f *fakeService) Upsert(ctx context.Context, name string, req *model.UpsertDrugRequest) (*model.DrugRecord, error) {
	f.gotName = name
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return req.ToRecord(name), nil
}

func (f *fakeService) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.err
}

func (f *fakeService) Snapshot(ctx context.Context) (pk.DrugStore, error) {
	return pk.MapStore{}, nil
}

func (f *fakeService) SeedFromCatalog(ctx context.Context) error {
	return nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	passthrough := func(c *gin.Context) { c.Next() }
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), passthrough)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func estradiolRecord() *model.DrugRecord {
	return &model.DrugRecord{
		Name:            "Estradiol Valerate (Progynon Depot)",
		Route:           model.RouteInjection,
		HalfLifeHours:   72,
		TimeToPeakHours: 36,
		Bioavailability: 1.0,
		EsterFactor:     0.76,
		DefaultDoseMg:   10,
	}
}

func TestListDrugs(t *testing.T) {
	svc := &fakeService{records: []*model.DrugRecord{estradiolRecord()}}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/drugs", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	var drugs []*model.DrugRecord
	require.NoError(t, json.Unmarshal(env.Data, &drugs))
	require.Len(t, drugs, 1)
	assert.Equal(t, "Estradiol Valerate (Progynon Depot)", drugs[0].Name)
}

func TestListDrugsPassesRouteFilter(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/drugs?route=Oral", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RouteOral, svc.gotRoute)
}

func TestListDrugsRejectsUnknownRoute(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/drugs?route=Inhaled", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "route")
}

func TestGetDrug(t *testing.T) {
	svc := &fakeService{records: []*model.DrugRecord{estradiolRecord()}}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/drugs/Spironolactone", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Spironolactone", svc.gotName)
}

func TestGetDrugNotFound(t *testing.T) {
	svc := &fakeService{err: apperrors.NotFound("drug", nil)}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/drugs/Unknown", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "drug not found", env.Message)
}

func TestUpsertDrug(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	body := model.UpsertDrugRequest{
		Route:           model.RouteInjection,
		HalfLifeHours:   96,
		TimeToPeakHours: 48,
		Bioavailability: 1.0,
		EsterFactor:     0.75,
		DefaultDoseMg:   8,
	}
	w, env := doJSON(t, r, http.MethodPut, "/api/v1/drugs/Estradiol%20Undecylate", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Estradiol Undecylate", svc.gotName)
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, 96.0, svc.gotReq.HalfLifeHours)
}

func TestUpsertDrugRejectsMissingFields(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodPut, "/api/v1/drugs/Whatever", map[string]interface{}{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Nil(t, svc.gotReq)
}

func TestUpsertDrugServiceError(t *testing.T) {
	svc := &fakeService{err: apperrors.BadRequest("ester factor must be in (0, 1], got 2", nil)}
	r := newTestRouter(svc)

	body := model.UpsertDrugRequest{
		Route:         model.RouteOral,
		HalfLifeHours: 14,
		EsterFactor:   1.0,
	}
	w, env := doJSON(t, r, http.MethodPut, "/api/v1/drugs/Whatever", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "ester factor")
}

func TestDeleteDrug(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodDelete, "/api/v1/drugs/Spironolactone", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, []string{"Spironolactone"}, svc.deleted)
}

func TestDeleteDrugMissingOverride(t *testing.T) {
	svc := &fakeService{err: apperrors.NotFound("drug override", nil)}
	r := newTestRouter(svc)

	w, env := doJSON(t, r, http.MethodDelete, "/api/v1/drugs/Spironolactone", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)
}
