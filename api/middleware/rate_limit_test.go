package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	scopes []string
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: make(map[string]int64)}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	f.scopes = append(f.scopes, scope)
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("claim", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent-orders/abc/accept", nil)
	req = req.WithContext(WithUserID(req.Context(), "dealer-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.scopes) != 1 || store.scopes[0] != "claim:user:dealer-1" {
		t.Fatalf("unexpected scopes %v", store.scopes)
	}
}

func TestRateLimit_BlocksOverLimitPerUser(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("verify", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify-code", nil)
		req = req.WithContext(WithUserID(req.Context(), "customer-1"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("expected success before limit, got %d", rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "60" {
			t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
		var payload struct {
			Success bool   `json:"success"`
			Code    string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Success || payload.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected payload %+v", payload)
		}
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify-code", nil)
	other = other.WithContext(WithUserID(other.Context(), "customer-2"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other caller to pass, got %d", rec.Code)
	}
}

func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("claim", time.Minute, 5)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(store.scopes) != 1 || store.scopes[0] != "claim:ip:10.0.0.1" {
		t.Fatalf("unexpected scopes %v", store.scopes)
	}
}

func TestRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("claim", 0, 0)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(store.scopes) != 0 {
		t.Fatalf("expected no counter calls, got %v", store.scopes)
	}
}
