package enums

import "fmt"

// OrderStatus is the delivery lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOnTheWay       OrderStatus = "on_the_way"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPendingPayment,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}
