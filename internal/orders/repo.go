package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// AppendHistory assigns the next per-order sequence number. Callers hold the
// order row (or just created it) in the same transaction; the unique
// (order_id, seq) index rejects a racing writer.
func (r *repository) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var last int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderStatusHistory{}).
		Where("order_id = ?", entry.OrderID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}
	entry.Seq = last + 1
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate loads the order row, locking it on postgres.
func (r *repository) FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := query.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

// MarkAvailable opens the order to dealers until expiry.
func (r *repository) MarkAvailable(ctx context.Context, orderID uuid.UUID, expiry time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"available_to_agents": true,
			"assignment_status":   enums.AssignmentStatusAvailable,
			"assignment_expiry":   expiry,
			"updated_at":          time.Now().UTC(),
		}).Error
}

// Claim assigns the order to dealerID in one guarded UPDATE. It reports false
// when the order was not claimable, so at most one concurrent claim wins.
func (r *repository) Claim(ctx context.Context, orderID, dealerID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("status IN ?", openStatuses).
		Where("dealer_id IS NULL").
		Where("available_to_agents = ?", true).
		Where("(assignment_expiry IS NULL OR assignment_expiry > ?)", now).
		Updates(map[string]any{
			"dealer_id":           dealerID,
			"status":              enums.OrderStatusConfirmed,
			"assigned_at":         now,
			"available_to_agents": false,
			"assignment_status":   enums.AssignmentStatusAssigned,
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus applies updates only while the order still holds status from.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters CustomerOrderFilters, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("customer_id = ?", customerID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context, customerID uuid.UUID) (map[enums.OrderStatus]int64, error) {
	var rows []struct {
		Status enums.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("customer_id = ?", customerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) CustomerStats(ctx context.Context, customerID uuid.UUID) (*StatsRow, error) {
	var row StatsRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_orders,
			COUNT(CASE WHEN status = 'confirmed' THEN 1 END) AS confirmed_orders,
			COUNT(CASE WHEN status = 'on_the_way' THEN 1 END) AS on_the_way_orders,
			COUNT(CASE WHEN status = 'delivered' THEN 1 END) AS delivered_orders,
			COUNT(CASE WHEN status IN ('pending', 'pending_payment', 'confirmed', 'preparing', 'on_the_way') THEN 1 END) AS active_orders,
			COALESCE(SUM(CASE WHEN status = 'delivered' OR payment_status = 'paid' THEN total_amount ELSE 0 END), 0) AS total_spent`).
		Where("customer_id = ?", customerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListAvailable returns claimable orders newest first.
func (r *repository) ListAvailable(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("status IN ?", openStatuses).
		Where("dealer_id IS NULL").
		Where("available_to_agents = ?", true).
		Where("(assignment_expiry IS NULL OR assignment_expiry > ?)", now).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListDealerOrders(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("dealer_id = ?", dealerID).
		Order(dealerOrderPriority).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListExpiredAssignments returns unclaimed orders whose offer window closed.
func (r *repository) ListExpiredAssignments(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", openStatuses).
		Where("dealer_id IS NULL").
		Where("available_to_agents = ?", true).
		Where("assignment_expiry IS NOT NULL AND assignment_expiry <= ?", now).
		Order("assignment_expiry ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ExpireAssignment withdraws the offer when the order is still unclaimed and
// expired. It reports false when a dealer claimed it first.
func (r *repository) ExpireAssignment(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("status IN ?", openStatuses).
		Where("dealer_id IS NULL").
		Where("available_to_agents = ?", true).
		Where("assignment_expiry IS NOT NULL AND assignment_expiry <= ?", now).
		Updates(map[string]any{
			"available_to_agents": false,
			"assignment_status":   enums.AssignmentStatusExpired,
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
