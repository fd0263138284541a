package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory adjusts stock inside a caller-owned transaction.
type Inventory struct {
	repo *Repository
}

// NewInventory binds stock adjustments to the product repository.
func NewInventory(repo *Repository) *Inventory {
	return &Inventory{repo: repo}
}

// Reserve takes qty units when enough stock remains. It reports false when
// the stock guard rejected the decrement.
func (i *Inventory) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("reserve quantity must be positive")
	}
	return i.repo.WithTx(tx).DecrementStock(ctx, productID, qty)
}

// Release returns qty units to stock.
func (i *Inventory) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return i.repo.WithTx(tx).RestoreStock(ctx, productID, qty)
}
