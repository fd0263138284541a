package orders

import (
	"fmt"
	"strings"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

// allowedTransitions is the forward-only status graph. pending_payment moves
// exactly like pending.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed},
	enums.OrderStatusPendingPayment: {enums.OrderStatusConfirmed},
	enums.OrderStatusConfirmed:      {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing:      {enums.OrderStatusOnTheWay, enums.OrderStatusCancelled},
	enums.OrderStatusOnTheWay:       {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:      {},
	enums.OrderStatusCancelled:      {},
}

// DealerSettableStatuses lists the targets a dealer may request.
var DealerSettableStatuses = []enums.OrderStatus{
	enums.OrderStatusConfirmed,
	enums.OrderStatusPreparing,
	enums.OrderStatusOnTheWay,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
}

// customerCancellable lists the statuses a customer may still cancel from.
var customerCancellable = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusPendingPayment,
	enums.OrderStatusConfirmed,
}

// AllowedNext returns the statuses reachable from the given one.
func AllowedNext(from enums.OrderStatus) []enums.OrderStatus {
	next := allowedTransitions[from]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the status graph.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// CanCustomerCancel reports whether a customer may cancel from status.
func CanCustomerCancel(status enums.OrderStatus) bool {
	for _, candidate := range customerCancellable {
		if candidate == status {
			return true
		}
	}
	return false
}

// ParseDealerTarget validates a requested dealer status.
func ParseDealerTarget(raw string) (enums.OrderStatus, error) {
	target := enums.OrderStatus(strings.TrimSpace(raw))
	for _, candidate := range DealerSettableStatuses {
		if candidate == target {
			return target, nil
		}
	}
	names := make([]string, 0, len(DealerSettableStatuses))
	for _, status := range DealerSettableStatuses {
		names = append(names, status.String())
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("Invalid status. Must be one of: %s", strings.Join(names, ", ")))
}

func validateTransition(from, to enums.OrderStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodePrecondition,
		fmt.Sprintf("Cannot change status from %s to %s", from, to)).
		WithDetails(map[string]any{
			"current_status": from,
			"allowed_next":   AllowedNext(from),
		})
}
