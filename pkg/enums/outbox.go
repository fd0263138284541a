package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregatePayment OutboxAggregateType = "payment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregatePayment,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventOrderCreated           OutboxEventType = "order_created"
	EventOrderClaimed           OutboxEventType = "order_claimed"
	EventOrderStatusChanged     OutboxEventType = "order_status_changed"
	EventOrderCancelled         OutboxEventType = "order_cancelled"
	EventOrderAssignmentExpired OutboxEventType = "order_assignment_expired"
	EventPaymentInitiated       OutboxEventType = "payment_initiated"
	EventPaymentCompleted       OutboxEventType = "payment_completed"
	EventPaymentFailed          OutboxEventType = "payment_failed"
	EventPaymentRefunded        OutboxEventType = "payment_refunded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderClaimed,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventOrderAssignmentExpired,
	EventPaymentInitiated,
	EventPaymentCompleted,
	EventPaymentFailed,
	EventPaymentRefunded,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
