package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"create order", http.MethodPost, "/api/v1/orders", criticalIdempotencyTTL, true},
		{"cancel order", http.MethodPatch, "/api/v1/orders/{orderId}/cancel", criticalIdempotencyTTL, true},
		{"claim", http.MethodPost, "/api/v1/agent-orders/{orderId}/accept", defaultIdempotencyTTL, true},
		{"initiate payment", http.MethodPost, "/api/v1/payments/initiate", defaultIdempotencyTTL, true},
		{"admin confirm", http.MethodPost, "/api/v1/admin/payments/abc/confirm", defaultIdempotencyTTL, true},
		{"list orders", http.MethodGet, "/api/v1/orders", 0, false},
		{"verify code", http.MethodPost, "/api/v1/payments/verify-code", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestRequestTTLFallsBackToPath(t *testing.T) {
	req := requestWithPattern(http.MethodPatch, "/api/v1/orders/6b1f/cancel", "/api/v1/*", nil)
	ttl, ok := requestTTL(req)
	if !ok || ttl != criticalIdempotencyTTL {
		t.Fatalf("expected critical ttl from raw path, got %v %v", ttl, ok)
	}
}

func TestIdempotencyMiddlewareWithoutKeyPassesThrough(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"delivery_location":"Kasarani"}`))
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected nothing stored, got %d records", len(store.data))
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"delivery_location":"Kasarani"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	replay := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"delivery_location":"Kasarani"}`))
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareSkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/payments/initiate", "/api/v1/payments/initiate", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "retry-me")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected failed request to be retried, ran %d", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/payments/initiate", "/api/v1/payments/initiate", strings.NewReader(`{"order_id":"a"}`))
	req.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/api/v1/payments/initiate", "/api/v1/payments/initiate", strings.NewReader(`{"order_id":"b"}`))
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Success || payload.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %+v", pkgerrors.CodeIdempotency, payload)
	}
}

func TestIdempotencyMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	var inner *httptest.ResponseRecorder
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// A duplicate arrives while the first claim is still running.
			dup := requestWithPattern(http.MethodPost, "/api/v1/agent-orders/o1/accept", "/api/v1/agent-orders/{orderId}/accept", strings.NewReader(`{}`))
			dup.Header.Set("Idempotency-Key", "claim-1")
			inner = httptest.NewRecorder()
			Idempotency(store, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ })).ServeHTTP(inner, dup)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/agent-orders/o1/accept", "/api/v1/agent-orders/{orderId}/accept", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "claim-1")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected first claim 200 got %d", resp.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409")
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d", calls)
	}
}

func TestIdempotencyMiddlewareMarksReplay(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	req := requestWithPattern(http.MethodPost, "/api/v1/payments/initiate", "/api/v1/payments/initiate", strings.NewReader(`{"order_id":"a"}`))
	req.Header.Set("Idempotency-Key", "k1")
	mw(handler).ServeHTTP(first, req)
	if first.Header().Get(idempotencyReplayHeader) != "" {
		t.Fatalf("first response must not be marked as replay")
	}

	second := httptest.NewRecorder()
	replay := requestWithPattern(http.MethodPost, "/api/v1/payments/initiate", "/api/v1/payments/initiate", strings.NewReader(`{"order_id":"a"}`))
	replay.Header.Set("Idempotency-Key", "k1")
	mw(handler).ServeHTTP(second, replay)
	if second.Header().Get(idempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header on stored response")
	}
}
