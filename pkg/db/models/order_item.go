package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem freezes the product name and price at order time.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
