package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service
// and by order placement.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error)
	FindItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	AddQuantity(ctx context.Context, item *models.CartItem) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (bool, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}
