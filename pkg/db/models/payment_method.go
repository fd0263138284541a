package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// PaymentMethod is a customer's saved M-Pesa number or card. Rows are soft
// deleted through IsActive.
type PaymentMethod struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Type        enums.PaymentMethodType `gorm:"column:type;type:text;not null"`
	Provider    string                  `gorm:"column:provider;not null"`
	LastFour    *string                 `gorm:"column:last_four"`
	PhoneNumber *string                 `gorm:"column:phone_number"`
	IsDefault   bool                    `gorm:"column:is_default;not null;default:false"`
	IsActive    bool                    `gorm:"column:is_active;not null"`
	Metadata    json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
