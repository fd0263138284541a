package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/mtaanigas/fulfillment-backend/internal/products"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/dbtest"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *dbtestEnv) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn))
	require.NoError(t, err)
	env := &dbtestEnv{
		userID: dbtest.CreateUser(t, conn, enums.UserRoleClient, "Kasarani, Nairobi").ID,
	}
	env.refill = dbtest.CreateProduct(t, conn, "6kg Refill", "1100.00", 10).ID
	env.burner = dbtest.CreateProduct(t, conn, "Burner", "850.50", 4).ID
	return svc, env
}

type dbtestEnv struct {
	userID uuid.UUID
	refill uuid.UUID
	burner uuid.UUID
}

func TestAddItemMergesQuantities(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: 2})
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.burner, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	for _, item := range cart.Items {
		if item.ProductID == env.refill {
			assert.Equal(t, 3, item.Quantity)
		}
	}
	assert.Equal(t, 4, cart.ItemCount)
	assert.Equal(t, "4150.5", cart.TotalPrice.String())
}

func TestAddItemValidates(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: 0})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, env.userID, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: MaxLineQuantity + 1})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateAndRemoveItems(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.UpdateItem(ctx, env.userID, env.refill, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = svc.UpdateItem(ctx, env.userID, env.refill, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, env.userID, env.refill)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClear(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.refill, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, env.userID, AddItemInput{ProductID: env.burner, Quantity: 1})
	require.NoError(t, err)

	n, err := svc.Clear(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
