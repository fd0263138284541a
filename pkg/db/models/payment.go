package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// Payment is one simulated payment attempt for an order.
type Payment struct {
	ID                   uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID              uuid.UUID               `gorm:"column:order_id;type:uuid;not null"`
	CustomerID           uuid.UUID               `gorm:"column:customer_id;type:uuid;not null"`
	PaymentMethodID      *uuid.UUID              `gorm:"column:payment_method_id;type:uuid"`
	Method               enums.PaymentMethodType `gorm:"column:method;type:text;not null"`
	Amount               decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Status               enums.PaymentStatus     `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	TransactionID        string                  `gorm:"column:transaction_id;not null;uniqueIndex"`
	PhoneNumber          *string                 `gorm:"column:phone_number"`
	CardLast4            *string                 `gorm:"column:card_last4"`
	CardBrand            *string                 `gorm:"column:card_brand"`
	SimulationCodeHash   string                  `gorm:"column:simulation_code_hash;not null"`
	SimulationExpiresAt  time.Time               `gorm:"column:simulation_expires_at;not null"`
	VerificationAttempts int                     `gorm:"column:verification_attempts;not null;default:0"`
	CompletedAt          *time.Time              `gorm:"column:completed_at"`
	RefundedAt           *time.Time              `gorm:"column:refunded_at"`
	FailureReason        *string                 `gorm:"column:failure_reason"`
	CreatedAt            time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
