package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/endosim/pk-api/internal/catalog"
	authHandler "github.com/endosim/pk-api/internal/handler/auth"
	calibrationHandler "github.com/endosim/pk-api/internal/handler/calibration"
	drugHandler "github.com/endosim/pk-api/internal/handler/drug"
	healthHandler "github.com/endosim/pk-api/internal/handler/health"
	promHandler "github.com/endosim/pk-api/internal/handler/prometheus"
	safetyHandler "github.com/endosim/pk-api/internal/handler/safety"
	simulationHandler "github.com/endosim/pk-api/internal/handler/simulation"
	"github.com/endosim/pk-api/internal/middleware"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/pk"
	"github.com/endosim/pk-api/internal/repository"
	"github.com/endosim/pk-api/internal/router"
	calibrationService "github.com/endosim/pk-api/internal/service/calibration"
	drugService "github.com/endosim/pk-api/internal/service/drug"
	safetyService "github.com/endosim/pk-api/internal/service/safety"
	simulationService "github.com/endosim/pk-api/internal/service/simulation"
	tokenService "github.com/endosim/pk-api/internal/service/token"
	"github.com/endosim/pk-api/pkg/auth"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/metrics"
	"github.com/endosim/pk-api/pkg/security"
)

const apiKey = "e2e-service-key-0001"

// Shared across the whole test binary; individual tests use distinct
// drug names so they do not step on each other's state.
var (
	server *gin.Engine
	fx     *fixtures
)

type fixtures struct {
	drugRepo *fakeDrugRepo
	outbox   *fakeOutbox
	broker   *fakeBroker
	jwt      auth.JWTService
}

func TestMain(m *testing.M) {
	server, fx = buildServer()
	os.Exit(m.Run())
}

// buildServer assembles the full stack with in-memory stores so the
// suite exercises the real router, middleware and services without
// Postgres or Redis.
func buildServer() (*gin.Engine, *fixtures) {
	appLogger := logger.NewLogger(&logger.Config{Level: "error"})
	m := metrics.New("pkapie2e")

	f := &fixtures{
		drugRepo: newFakeDrugRepo(),
		outbox:   &fakeOutbox{},
		broker:   &fakeBroker{},
		jwt:      auth.NewJWTService("e2e-secret", "pk-api", time.Hour),
	}

	drugSvc := drugService.NewService(f.drugRepo, catalog.New(), appLogger)

	engineCfg := pk.DefaultConfig()
	simulationSvc := simulationService.NewService(drugSvc, engineCfg, simulationService.Config{}, m, appLogger)
	calibrationSvc := calibrationService.NewService(drugSvc, f.outbox, engineCfg, m, appLogger)
	safetySvc := safetyService.NewService(simulationSvc, drugSvc, appLogger)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	keyHash, err := hasher.Hash(apiKey)
	if err != nil {
		panic(err)
	}
	tokenSvc := tokenService.NewService(hasher, f.jwt, keyHash, appLogger)

	r := router.NewRouter(
		healthHandler.NewHandler(nil, f.broker),
		promHandler.New(),
		authHandler.NewHandler(tokenSvc),
		drugHandler.NewHandler(drugSvc),
		simulationHandler.NewHandler(simulationSvc),
		calibrationHandler.NewHandler(calibrationSvc),
		safetyHandler.NewHandler(safetySvc),
		middleware.RequireScope(f.jwt, auth.ScopeAdmin),
		router.Config{CORS: middleware.DefaultCORSConfig()},
	)
	r.Setup()

	return r.Engine(), f
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 && w.Header().Get("Content-Encoding") == "" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

func adminToken(t *testing.T) string {
	t.Helper()

	w, env := doRequest(t, http.MethodPost, "/api/v1/auth/token", map[string]string{"api_key": apiKey}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var tokens model.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

type fakeDrugRepo struct {
	mu     sync.Mutex
	rows   map[string]*model.DrugRecord
	events []*model.OutboxEvent
}

func newFakeDrugRepo() *fakeDrugRepo {
	return &fakeDrugRepo{rows: make(map[string]*model.DrugRecord)}
}

func (f *fakeDrugRepo) Upsert(ctx context.Context, drug *model.DrugRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[drug.Name] = drug
	return nil
}

func (f *fakeDrugRepo) UpsertWithEvent(ctx context.Context, drug *model.DrugRecord, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[drug.Name] = drug
	f.events = append(f.events, event)
	return nil
}

func (f *fakeDrugRepo) Get(ctx context.Context, name string) (*model.DrugRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.rows[name]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDrugRepo) List(ctx context.Context) ([]*model.DrugRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.DrugRecord, 0, len(f.rows))
	for _, rec := range f.rows {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeDrugRepo) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[name]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, name)
	return nil
}

func (f *fakeDrugRepo) Seed(ctx context.Context, drugs []*model.DrugRecord) error {
	return nil
}

// fakeOutbox records created events; the embedded interface panics on
// the processor-side methods, which this suite never touches.
type fakeOutbox struct {
	repository.OutboxRepository
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (f *fakeOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeOutbox) last() *model.OutboxEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

type fakeBroker struct{}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Ping(ctx context.Context) error { return nil }

func (b *fakeBroker) Close() error { return nil }
