package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// OrderStatusHistory is an append-only audit entry. ChangedBy is an actor
// string such as "dealer:<id>" or "system:assignment-expiry". Seq orders the
// entries of one order; several can share a created_at.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	Seq       int64             `gorm:"column:seq;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	ChangedBy string            `gorm:"column:changed_by;not null"`
	Note      *string           `gorm:"column:note"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
