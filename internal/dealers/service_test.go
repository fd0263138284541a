package dealers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/dbtest"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

func newTestService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(users.NewRepository(conn), NewRepository(conn), nil)
	require.NoError(t, err)
	return svc
}

func TestMatchInsertsCandidatesForWard(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)

	inWard := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani, Nairobi")
	dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Westlands, Nairobi")
	dbtest.CreateUser(t, conn, enums.UserRoleClient, "Kasarani, Nairobi")
	inactive := dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani")
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	orderID := uuid.New()
	matches, err := svc.Match(t.Context(), conn, orderID, "kasarani")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, inWard.ID, matches[0].DealerID)
	assert.Equal(t, ScoreExact, matches[0].Score)

	rows, err := NewRepository(conn).ListByOrder(t.Context(), orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.CandidateStatusAvailable, rows[0].Status)

	// a second pass does not duplicate the offer
	_, err = svc.Match(t.Context(), conn, orderID, "kasarani")
	require.NoError(t, err)
	rows, err = NewRepository(conn).ListByOrder(t.Context(), orderID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMatchWithoutDealers(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)

	matches, err := svc.Match(t.Context(), conn, uuid.New(), "kasarani")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReleaseDeletesCandidates(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani")
	dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani North")

	orderID := uuid.New()
	_, err := svc.Match(t.Context(), conn, orderID, "kasarani")
	require.NoError(t, err)

	removed, err := svc.Release(t.Context(), conn, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
