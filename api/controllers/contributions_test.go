package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchpilot/fieldops-backend/internal/contributions"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

type testContributionsService struct {
	recordFn func(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error)
	ledgerFn func(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]contributions.LedgerEntryDTO, error)
}

func (s *testContributionsService) Record(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, input)
	}
	return &contributions.Result{}, nil
}

func (s *testContributionsService) Ledger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]contributions.LedgerEntryDTO, error) {
	if s.ledgerFn != nil {
		return s.ledgerFn(ctx, waveID, repID)
	}
	return []contributions.LedgerEntryDTO{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestContributionCreateSingleLine(t *testing.T) {
	waveID := uuid.New()
	repID := uuid.New()
	itemID := uuid.New()
	var got contributions.RecordInput
	svc := &testContributionsService{
		recordFn: func(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
			got = input
			return &contributions.Result{BatchID: uuid.New()}, nil
		},
	}

	body := `{"wave_id":"` + waveID.String() + `","rep_id":"` + repID.String() + `","item_type":"display","item_id":"` + itemID.String() + `","quantity":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ContributionCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected one line got %d", len(got.Lines))
	}
	if got.Lines[0].ItemID != itemID || got.Lines[0].Quantity != 3 {
		t.Fatalf("unexpected line %+v", got.Lines[0])
	}
}

func TestContributionCreateBatch(t *testing.T) {
	waveID := uuid.New()
	repID := uuid.New()
	var got contributions.RecordInput
	svc := &testContributionsService{
		recordFn: func(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
			got = input
			return &contributions.Result{BatchID: uuid.New()}, nil
		},
	}

	body := `{"wave_id":"` + waveID.String() + `","rep_id":"` + repID.String() + `","items":[` +
		`{"item_type":"display","item_id":"` + uuid.NewString() + `","quantity":2},` +
		`{"item_type":"palette","item_id":"` + uuid.NewString() + `","quantity":-1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ContributionCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(got.Lines) != 2 {
		t.Fatalf("expected two lines got %d", len(got.Lines))
	}
	if got.Lines[1].Quantity != -1 {
		t.Fatalf("retraction quantity lost: %+v", got.Lines[1])
	}
}

func TestContributionCreateRejectsMixedShape(t *testing.T) {
	svc := &testContributionsService{
		recordFn: func(ctx context.Context, input contributions.RecordInput) (*contributions.Result, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := `{"wave_id":"` + uuid.NewString() + `","rep_id":"` + uuid.NewString() + `",` +
		`"item_type":"display","item_id":"` + uuid.NewString() + `","quantity":1,` +
		`"items":[{"item_type":"display","item_id":"` + uuid.NewString() + `","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ContributionCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestContributionLedgerParsesRepFilter(t *testing.T) {
	waveID := uuid.New()
	repID := uuid.New()
	var gotWave uuid.UUID
	var gotRep *uuid.UUID
	svc := &testContributionsService{
		ledgerFn: func(ctx context.Context, w uuid.UUID, r *uuid.UUID) ([]contributions.LedgerEntryDTO, error) {
			gotWave = w
			gotRep = r
			return []contributions.LedgerEntryDTO{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/waves/"+waveID.String()+"/ledger?rep_id="+repID.String(), nil)
	req = addRouteParam(req, "waveId", waveID.String())
	resp := httptest.NewRecorder()
	ContributionLedger(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotWave != waveID {
		t.Fatalf("unexpected wave %s", gotWave)
	}
	if gotRep == nil || *gotRep != repID {
		t.Fatalf("rep filter not forwarded: %v", gotRep)
	}
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if _, ok := envelope.Data["entries"]; !ok {
		t.Fatal("response missing entries")
	}
}
