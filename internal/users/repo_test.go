package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/dbtest"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

func TestListActiveByRole(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	dealer := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani, Nairobi")
	inactive := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Roysambu")
	dbtest.CreateUser(t, conn, enums.UserRoleClient, "Kasarani")
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	dealers, err := repo.ListActiveByRole(ctx, enums.UserRoleDealer)
	require.NoError(t, err)
	require.Len(t, dealers, 1)
	assert.Equal(t, dealer.ID, dealers[0].ID)
	assert.Equal(t, "kasarani", dealers[0].Location.Ward)
}

func TestFindByIDs(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	a := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kilimani")
	b := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Lavington")

	rows, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFromModelSummarizes(t *testing.T) {
	phone := "+254700000000"
	u := &models.User{ID: uuid.New(), Name: "Wanjiku", Phone: &phone, Role: enums.UserRoleDealer}
	summary := FromModel(u)
	assert.Equal(t, "Wanjiku", summary.Name)
	assert.Equal(t, &phone, summary.Phone)
	assert.Nil(t, FromModel(nil))
}
