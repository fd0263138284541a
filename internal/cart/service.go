package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 50

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the customer cart.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// AddItemInput is the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     CartRepository
	products productLoader
}

// NewService builds a cart service backed by the provided repositories.
func NewService(repo CartRepository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return newCartDTO(lines), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	existing := 0
	item, err := s.repo.FindItem(ctx, userID, input.ProductID)
	switch {
	case err == nil:
		existing = item.Quantity
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if existing+input.Quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Quantity cannot exceed %d per product", MaxLineQuantity))
	}

	if err := s.repo.AddQuantity(ctx, &models.CartItem{
		UserID:    userID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets the line quantity; zero or less removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Quantity cannot exceed %d per product", MaxLineQuantity))
	}
	updated, err := s.repo.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	removed, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	n, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return n, nil
}

// CartDTO is the customer view of the cart.
type CartDTO struct {
	Items      []CartLineDTO   `json:"items"`
	ItemCount  int             `json:"item_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartLineDTO is one cart line with live catalog data.
type CartLineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	Size      *string         `json:"size,omitempty"`
	Available bool            `json:"available"`
}

func newCartDTO(lines []Line) *CartDTO {
	dto := &CartDTO{Items: make([]CartLineDTO, 0, len(lines)), TotalPrice: decimal.Zero}
	for _, line := range lines {
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		dto.Items = append(dto.Items, CartLineDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
			Stock:     line.Stock,
			Size:      line.Size,
			Available: line.IsActive && line.Stock >= line.Quantity,
		})
		dto.ItemCount += line.Quantity
		dto.TotalPrice = dto.TotalPrice.Add(lineTotal)
	}
	return dto
}
