package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/merchpilot/fieldops-backend/internal/activity"
	"github.com/merchpilot/fieldops-backend/internal/contributions"
	"github.com/merchpilot/fieldops-backend/internal/dashboard"
	"github.com/merchpilot/fieldops-backend/internal/waves"
	"github.com/merchpilot/fieldops-backend/pkg/config"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubWavesService struct{}

func (stubWavesService) Create(ctx context.Context, input waves.CreateWaveInput) (*waves.WaveDTO, error) {
	return &waves.WaveDTO{ID: uuid.New()}, nil
}

func (stubWavesService) GetByID(ctx context.Context, waveID uuid.UUID) (*waves.WaveDTO, error) {
	return &waves.WaveDTO{ID: waveID}, nil
}

func (stubWavesService) List(ctx context.Context) ([]waves.WaveDTO, error) {
	return []waves.WaveDTO{}, nil
}

func (stubWavesService) Delete(ctx context.Context, waveID uuid.UUID) error {
	return nil
}

type stubContributionsService struct{}

func (stubContributionsService) Record(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
	return &contributions.Result{BatchID: uuid.New()}, nil
}

func (stubContributionsService) Ledger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]contributions.LedgerEntryDTO, error) {
	return []contributions.LedgerEntryDTO{}, nil
}

type stubActivityService struct{}

func (stubActivityService) List(ctx context.Context, waveID uuid.UUID, limit int, cursor string) ([]activity.Activity, string, error) {
	return []activity.Activity{}, "", nil
}

type stubDashboardService struct{}

func (stubDashboardService) ChainSummary(ctx context.Context, query dashboard.ChainQuery) (dashboard.Summary, error) {
	return dashboard.Summary{}, nil
}

func (stubDashboardService) WaveSummaries(ctx context.Context, query dashboard.WaveQuery) ([]dashboard.WaveSummary, error) {
	return []dashboard.WaveSummary{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		nil, // idempotency store
		stubWavesService{},
		stubContributionsService{},
		stubActivityService{},
		stubDashboardService{},
	)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if got := resp.Header().Get("X-FieldOps-Env"); got != "test" {
			t.Fatalf("%s: expected env header got %q", path, got)
		}
	}
}

func TestPublicPingRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestWaveRoutesAreWired(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/waves/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list waves: expected 200 got %d", resp.Code)
	}

	waveID := uuid.NewString()
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/waves/"+waveID+"/activity", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("activity: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/waves/"+waveID+"/ledger", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("ledger: expected 200 got %d", resp.Code)
	}
}

func TestContributionRouteIsWired(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags.Idempotency = false
	router := newTestRouter(cfg)

	body := `{"wave_id":"` + uuid.NewString() + `","rep_id":"` + uuid.NewString() + `","item_type":"display","item_id":"` + uuid.NewString() + `","quantity":1}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

type memoryIdempotencyStore struct {
	data map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	m.data[key] = str
	return true, nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	m.data[key] = str
	return nil
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type countingContributionsService struct {
	calls int
}

func (s *countingContributionsService) Record(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
	s.calls++
	return &contributions.Result{BatchID: uuid.New()}, nil
}

func (s *countingContributionsService) Ledger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]contributions.LedgerEntryDTO, error) {
	return []contributions.LedgerEntryDTO{}, nil
}

func TestContributionRouteEnforcesIdempotency(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags.Idempotency = true
	svc := &countingContributionsService{}
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		&memoryIdempotencyStore{data: make(map[string]string)},
		stubWavesService{},
		svc,
		stubActivityService{},
		stubDashboardService{},
	)

	body := `{"wave_id":"` + uuid.NewString() + `","rep_id":"` + uuid.NewString() + `","item_type":"display","item_id":"` + uuid.NewString() + `","quantity":1}`

	// missing key is rejected before the handler runs
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("no key: expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.calls != 0 {
		t.Fatalf("service ran without idempotency key")
	}

	// retries with the same key replay the stored response
	first := ""
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "route-test-key")
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d: %s", i, resp.Code, resp.Body.String())
		}
		if first == "" {
			first = resp.Body.String()
		} else if resp.Body.String() != first {
			t.Fatalf("attempt %d: replayed body differs", i)
		}
	}
	if svc.calls != 1 {
		t.Fatalf("service executed %d times, expected 1", svc.calls)
	}
}

func TestDashboardRoutesAreWired(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/chain-summary?chain=edeka", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("chain summary: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/wave-summary", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("wave summary: expected 200 got %d", resp.Code)
	}
}
