package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once an order is placed and offered to dealers.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID               `json:"order_id"`
	CustomerID       uuid.UUID               `json:"customer_id"`
	TotalAmount      decimal.Decimal         `json:"total_amount"`
	PaymentMethod    enums.PaymentMethodType `json:"payment_method"`
	DeliveryWard     string                  `json:"delivery_ward"`
	CandidateDealers []uuid.UUID             `json:"candidate_dealers"`
	AssignmentExpiry time.Time               `json:"assignment_expiry"`
}

// OrderClaimedEvent is emitted when a dealer wins the claim on an order.
type OrderClaimedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	DealerID   uuid.UUID `json:"dealer_id"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// OrderStatusChangedEvent is emitted for every dealer-driven status transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	DealerID   *uuid.UUID        `json:"dealer_id,omitempty"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// OrderCancelledEvent is emitted when a customer cancels an order.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	DealerID    *uuid.UUID        `json:"dealer_id,omitempty"`
	From        enums.OrderStatus `json:"from"`
	Reason      string            `json:"reason,omitempty"`
	CancelledAt time.Time         `json:"cancelled_at"`
}

// OrderAssignmentExpiredEvent is emitted when nobody claimed an order in time.
type OrderAssignmentExpiredEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ExpiredAt  time.Time `json:"expired_at"`
}

// PaymentEvent covers the payment lifecycle events.
type PaymentEvent struct {
	PaymentID     uuid.UUID               `json:"payment_id"`
	OrderID       uuid.UUID               `json:"order_id"`
	CustomerID    uuid.UUID               `json:"customer_id"`
	Method        enums.PaymentMethodType `json:"method"`
	Amount        decimal.Decimal         `json:"amount"`
	Status        enums.PaymentStatus     `json:"status"`
	TransactionID string                  `json:"transaction_id"`
	Reason        string                  `json:"reason,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
}
