package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/internal/dashboard"
)

type testDashboardService struct {
	chainFn func(ctx context.Context, query dashboard.ChainQuery) (dashboard.Summary, error)
	wavesFn func(ctx context.Context, query dashboard.WaveQuery) ([]dashboard.WaveSummary, error)
}

func (s *testDashboardService) ChainSummary(ctx context.Context, query dashboard.ChainQuery) (dashboard.Summary, error) {
	if s.chainFn != nil {
		return s.chainFn(ctx, query)
	}
	return dashboard.Summary{CurrentValue: decimal.Zero, GoalValue: decimal.Zero}, nil
}

func (s *testDashboardService) WaveSummaries(ctx context.Context, query dashboard.WaveQuery) ([]dashboard.WaveSummary, error) {
	if s.wavesFn != nil {
		return s.wavesFn(ctx, query)
	}
	return []dashboard.WaveSummary{}, nil
}

func TestDashboardChainSummaryRejectsUnknownChain(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/chain-summary?chain=aldi", nil)
	resp := httptest.NewRecorder()
	DashboardChainSummary(&testDashboardService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDashboardChainSummaryRepFilterSemantics(t *testing.T) {
	repID := uuid.New()
	var got dashboard.ChainQuery
	svc := &testDashboardService{
		chainFn: func(ctx context.Context, query dashboard.ChainQuery) (dashboard.Summary, error) {
			got = query
			return dashboard.Summary{CurrentValue: decimal.Zero, GoalValue: decimal.Zero}, nil
		},
	}
	handler := DashboardChainSummary(svc, testLogger())

	// absent rep_ids keeps the unfiltered selection
	resp := httptest.NewRecorder()
	handler(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/chain-summary?chain=edeka", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.Filters.Reps.Filtered() {
		t.Fatal("absent rep_ids must stay unfiltered")
	}

	// present but empty rep_ids is the no-reps-selected sentinel
	resp = httptest.NewRecorder()
	handler(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/chain-summary?chain=edeka&rep_ids=", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !got.Filters.Reps.Empty() {
		t.Fatal("empty rep_ids must yield the empty selection")
	}

	// populated rep_ids narrows the selection
	resp = httptest.NewRecorder()
	handler(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/chain-summary?chain=edeka&rep_ids="+repID.String(), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	ids := got.Filters.Reps.IDs()
	if len(ids) != 1 || ids[0] != repID {
		t.Fatalf("rep ids not forwarded: %v", ids)
	}
}

func TestDashboardWaveSummariesParsesFilters(t *testing.T) {
	waveID := uuid.New()
	var got dashboard.WaveQuery
	svc := &testDashboardService{
		wavesFn: func(ctx context.Context, query dashboard.WaveQuery) ([]dashboard.WaveSummary, error) {
			got = query
			return []dashboard.WaveSummary{}, nil
		},
	}

	url := "/api/v1/dashboard/wave-summary?wave_id=" + waveID.String() + "&item_types=display,palette&from=2026-06-01&to=2026-06-30"
	resp := httptest.NewRecorder()
	DashboardWaveSummaries(svc, testLogger())(resp, httptest.NewRequest(http.MethodGet, url, nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.WaveID == nil || *got.WaveID != waveID {
		t.Fatalf("wave id not forwarded: %v", got.WaveID)
	}
	if len(got.Filters.ItemTypes) != 2 {
		t.Fatalf("item types not parsed: %v", got.Filters.ItemTypes)
	}
	if got.Filters.From == nil || got.Filters.To == nil {
		t.Fatal("date range not parsed")
	}
}

func TestDashboardWaveSummariesRejectsBadItemType(t *testing.T) {
	resp := httptest.NewRecorder()
	DashboardWaveSummaries(&testDashboardService{}, testLogger())(resp,
		httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/wave-summary?item_types=pyramide", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
