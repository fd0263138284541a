package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	MarkAvailable(ctx context.Context, orderID uuid.UUID, expiry time.Time) error
	Claim(ctx context.Context, orderID, dealerID uuid.UUID, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error)
	UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters CustomerOrderFilters, params pagination.Params) ([]models.Order, error)
	CountByStatus(ctx context.Context, customerID uuid.UUID) (map[enums.OrderStatus]int64, error)
	CustomerStats(ctx context.Context, customerID uuid.UUID) (*StatsRow, error)
	ListAvailable(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
	ListDealerOrders(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.Order, error)
	ListExpiredAssignments(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
	ExpireAssignment(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
}

// StatsRow is the aggregate read behind the customer stats endpoint.
type StatsRow struct {
	TotalOrders     int64           `gorm:"column:total_orders"`
	PendingOrders   int64           `gorm:"column:pending_orders"`
	ConfirmedOrders int64           `gorm:"column:confirmed_orders"`
	OnTheWayOrders  int64           `gorm:"column:on_the_way_orders"`
	DeliveredOrders int64           `gorm:"column:delivered_orders"`
	ActiveOrders    int64           `gorm:"column:active_orders"`
	TotalSpent      decimal.Decimal `gorm:"column:total_spent"`
}
