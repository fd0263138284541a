package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	productsvc "github.com/mtaanigas/fulfillment-backend/internal/products"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// ProductList returns a page of active catalog products.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Filters: filters,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ProductDetail returns one active product.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"product": product})
	}
}

func parseProductFilters(r *http.Request) (productsvc.ListFilters, error) {
	query := r.URL.Query()
	filters := productsvc.ListFilters{
		Query: strings.TrimSpace(query.Get("q")),
		Size:  strings.TrimSpace(query.Get("size")),
	}
	if raw := strings.TrimSpace(query.Get("in_stock")); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "in_stock must be true or false")
		}
		filters.InStock = &inStock
	}
	return filters, nil
}
