package cart

import (
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	cartsvc "github.com/mtaanigas/fulfillment-backend/internal/cart"
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// A zero quantity removes the line.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type clearCartResponse struct {
	Message      string `json:"message"`
	ItemsRemoved int64  `json:"items_removed"`
}

func (p addItemRequest) toInput() (cartsvc.AddItemInput, error) {
	productID, err := validators.ParseUUID(p.ProductID, "product id")
	if err != nil {
		return cartsvc.AddItemInput{}, err
	}
	return cartsvc.AddItemInput{ProductID: productID, Quantity: p.Quantity}, nil
}
