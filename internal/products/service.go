package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// Service exposes the public catalog.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error)
}

type service struct {
	repo productReader
}

// NewService builds the catalog service.
func NewService(repo productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, err := s.repo.List(ctx, input.Filters, input.Pagination)
	if err != nil {
		if _, cursorErr := pagination.ParseCursor(input.Pagination.Cursor); cursorErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, cursorErr, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page, next := pagination.Trim(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(page)),
		NextCursor: next,
	}
	for _, p := range page {
		result.Products = append(result.Products, newProductDTO(p))
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !p.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	dto := newProductDTO(*p)
	return &dto, nil
}
