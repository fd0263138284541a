package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productsvc "github.com/mtaanigas/fulfillment-backend/internal/products"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type stubProductService struct {
	lastInput productsvc.ListProductsInput
	product   *productsvc.ProductDTO
	err       error
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) (*productsvc.ProductListResult, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductListResult{Products: []productsvc.ProductDTO{}}, nil
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestProductListParsesFilters(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=refill&size=13kg&in_stock=true&limit=10", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastInput.Filters.Query != "refill" || svc.lastInput.Filters.Size != "13kg" {
		t.Fatalf("unexpected filters %+v", svc.lastInput.Filters)
	}
	if svc.lastInput.Filters.InStock == nil || !*svc.lastInput.Filters.InStock {
		t.Fatalf("expected in_stock filter")
	}
	if svc.lastInput.Pagination.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", svc.lastInput.Pagination.Limit)
	}
}

func TestProductListRejectsBadInStock(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?in_stock=maybe", nil)
	rec := httptest.NewRecorder()
	ProductList(&stubProductService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProductDetail(t *testing.T) {
	productID := uuid.New()
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: productID, Name: "6kg Refill", Price: decimal.NewFromInt(1100), InStock: true}}

	makeRequest := func(param string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+param, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", param)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		ProductDetail(svc, testLogger()).ServeHTTP(rec, req)
		return rec
	}

	t.Run("found", func(t *testing.T) {
		rec := makeRequest(productID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Success bool                  `json:"success"`
			Product productsvc.ProductDTO `json:"product"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Success || body.Product.ID != productID {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := makeRequest("not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		rec := makeRequest(uuid.NewString())
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{err: errors.New("connection refused")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Mtaani-Env") != "dev" {
		t.Fatalf("unexpected live response %d %q", rec.Code, rec.Header().Get("X-Mtaani-Env"))
	}
}
