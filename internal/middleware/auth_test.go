package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homescope/homescope-api/internal/pkg/jwt"
)

func newTestJWT(t *testing.T, accessTTL time.Duration) *jwt.Service {
	t.Helper()
	return jwt.NewService("test-secret", accessTTL, time.Hour)
}

func TestAuthValidToken(t *testing.T) {
	svc := newTestJWT(t, time.Minute)
	accountID := uuid.New()

	token, err := svc.GenerateAccessToken(accountID, "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotID uuid.UUID
	var gotRole string
	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetAccountID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotID != accountID {
		t.Fatalf("expected account id %s, got %s", accountID, gotID)
	}
	if gotRole != "user" {
		t.Fatalf("expected role user, got %q", gotRole)
	}
}

func TestAuthMissingToken(t *testing.T) {
	svc := newTestJWT(t, time.Minute)

	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthExpiredToken(t *testing.T) {
	svc := newTestJWT(t, -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestOptionalAuthAnonymous(t *testing.T) {
	svc := newTestJWT(t, time.Minute)

	handler := OptionalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAccountIDPtr(r.Context()) != nil {
			t.Fatal("expected nil account id for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("anonymous request must pass through, got %d", rr.Code)
	}
}

func TestOptionalAuthWithToken(t *testing.T) {
	svc := newTestJWT(t, time.Minute)
	accountID := uuid.New()

	token, err := svc.GenerateAccessToken(accountID, "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := OptionalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ptr := GetAccountIDPtr(r.Context())
		if ptr == nil || *ptr != accountID {
			t.Fatalf("expected account id %s in context", accountID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireAgent(t *testing.T) {
	svc := newTestJWT(t, time.Minute)

	run := func(role string) int {
		token, err := svc.GenerateAccessToken(uuid.New(), role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		handler := Auth(svc)(RequireAgent()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := run("agent"); code != http.StatusOK {
		t.Fatalf("expected agent to pass, got %d", code)
	}
	if code := run("admin"); code != http.StatusOK {
		t.Fatalf("expected admin to pass, got %d", code)
	}
	if code := run("user"); code != http.StatusForbidden {
		t.Fatalf("expected user to be forbidden, got %d", code)
	}
}
