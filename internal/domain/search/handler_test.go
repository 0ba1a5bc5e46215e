package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/middleware"
)

func newTestHandler(ledger *memLedger, provider *fakeProvider) *Handler {
	gate := credit.NewService(ledger, nil)
	svc := NewService(newFakeSearchRepo(), gate, provider)
	return NewHandler(svc, gate)
}

func runRequest(h *Handler, accountID *uuid.UUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/searches", strings.NewReader(body))
	if accountID != nil {
		ctx := context.WithValue(req.Context(), middleware.AccountIDKey, *accountID)
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	h.Run(rr, req)
	return rr
}

func TestRunHandlerInsufficientCreditsIs402(t *testing.T) {
	h := newTestHandler(newMemLedger(), &fakeProvider{})
	accountID := uuid.New()

	rr := runRequest(h, &accountID, `{"query":"742 Evergreen Terrace","tier":"smart"}`)
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRunHandlerAnonymousSmartIs401(t *testing.T) {
	h := newTestHandler(newMemLedger(), &fakeProvider{})

	rr := runRequest(h, nil, `{"query":"742 Evergreen Terrace","tier":"smart"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRunHandlerAnonymousBasicIs200(t *testing.T) {
	h := newTestHandler(newMemLedger(), &fakeProvider{})

	rr := runRequest(h, nil, `{"query":"742 Evergreen Terrace","tier":"basic"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRunHandlerRejectsUnknownTier(t *testing.T) {
	h := newTestHandler(newMemLedger(), &fakeProvider{})

	rr := runRequest(h, nil, `{"query":"742 Evergreen Terrace","tier":"deluxe"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 validation error, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestValidateHandlerAdvisory(t *testing.T) {
	ledger := newMemLedger()
	h := newTestHandler(ledger, &fakeProvider{})
	accountID := uuid.New()
	ledger.balances[accountID] = 2

	req := httptest.NewRequest(http.MethodPost, "/search/validate", strings.NewReader(`{"tier":"smart"}`))
	ctx := context.WithValue(req.Context(), middleware.AccountIDKey, accountID)
	req = req.WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Validate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var envelope struct {
		Data credit.ValidateResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.CanProceed {
		t.Fatal("expected validate to allow with balance 2")
	}
	if envelope.Data.Balance != 2 || envelope.Data.CreditsRequired != 1 {
		t.Fatalf("unexpected advisory payload: %+v", envelope.Data)
	}
}

func TestTiersHandler(t *testing.T) {
	h := newTestHandler(newMemLedger(), &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/search/tiers", nil)
	rr := httptest.NewRecorder()
	h.Tiers(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var envelope struct {
		Data []credit.TierPolicy `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(envelope.Data))
	}
}
