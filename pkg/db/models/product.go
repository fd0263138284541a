package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry (gas cylinder, refill or accessory).
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Size        *string         `gorm:"column:size"`
	IsActive    bool            `gorm:"column:is_active;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
