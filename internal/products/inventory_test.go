package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/dbtest"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
)

func TestInventoryReserveAndRelease(t *testing.T) {
	conn := dbtest.Open(t)
	inv := NewInventory(NewRepository(conn))
	p := dbtest.CreateProduct(t, conn, "6kg refill", "1100", 3)

	err := conn.Transaction(func(tx *gorm.DB) error {
		ok, err := inv.Reserve(t.Context(), tx, p.ID, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = inv.Reserve(t.Context(), tx, p.ID, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		return inv.Release(t.Context(), tx, p.ID, 1)
	})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)
}

func TestInventoryRejectsNonPositiveQuantity(t *testing.T) {
	conn := dbtest.Open(t)
	inv := NewInventory(NewRepository(conn))
	p := dbtest.CreateProduct(t, conn, "13kg refill", "2900", 3)

	_, err := inv.Reserve(t.Context(), conn, p.ID, 0)
	assert.Error(t, err)
}
