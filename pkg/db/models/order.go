package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// Order is a customer order. DealerID is the only assigned-dealer reference.
type Order struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID          uuid.UUID                `gorm:"column:customer_id;type:uuid;not null"`
	DeliveryLocation    string                   `gorm:"column:delivery_location;not null"`
	DeliveryWard        string                   `gorm:"column:delivery_ward;not null"`
	SpecialInstructions *string                  `gorm:"column:special_instructions"`
	Status              enums.OrderStatus        `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus       enums.OrderPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod       enums.PaymentMethodType  `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	AssignmentStatus    enums.AssignmentStatus   `gorm:"column:assignment_status;type:text;not null;default:'unassigned'"`
	AvailableToAgents   bool                     `gorm:"column:available_to_agents;not null;default:false"`
	AssignmentExpiry    *time.Time               `gorm:"column:assignment_expiry"`
	DealerID            *uuid.UUID               `gorm:"column:dealer_id;type:uuid"`
	TotalAmount         decimal.Decimal          `gorm:"column:total_amount;type:numeric(12,2);not null"`
	AssignedAt          *time.Time               `gorm:"column:assigned_at"`
	DeliveredAt         *time.Time               `gorm:"column:delivered_at"`
	CancelledAt         *time.Time               `gorm:"column:cancelled_at"`
	CancelReason        *string                  `gorm:"column:cancel_reason"`
	Items               []OrderItem              `gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
