package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
)

// ProductDTO is the public catalog view of a product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Size        *string         `json:"size,omitempty"`
	InStock     bool            `json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductListResult wraps a catalog page plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func newProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Size:        p.Size,
		InStock:     p.Stock > 0,
		CreatedAt:   p.CreatedAt,
	}
}
