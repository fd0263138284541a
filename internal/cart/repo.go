package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
)

// Line is a cart item joined with the current catalog row.
type Line struct {
	CartItemID uuid.UUID       `gorm:"column:cart_item_id"`
	ProductID  uuid.UUID       `gorm:"column:product_id"`
	Quantity   int             `gorm:"column:quantity"`
	Name       string          `gorm:"column:name"`
	Price      decimal.Decimal `gorm:"column:price"`
	Stock      int             `gorm:"column:stock"`
	Size       *string         `gorm:"column:size"`
	IsActive   bool            `gorm:"column:is_active"`
	AddedAt    time.Time       `gorm:"column:added_at"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) CartRepository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListLines returns the user's cart in insertion order.
func (r *repository) ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	var lines []Line
	err := r.db.WithContext(ctx).
		Table("cart_items c").
		Select(`c.id AS cart_item_id, c.product_id, c.quantity, c.created_at AS added_at,
			p.name, p.price, p.stock, p.size, p.is_active`).
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.created_at ASC").
		Order("c.id ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *repository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddQuantity inserts the line or adds to the existing quantity.
func (r *repository) AddQuantity(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(item).Error
}

func (r *repository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{
			"quantity":   qty,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
