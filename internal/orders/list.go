package orders

import (
	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// CustomerOrderFilters narrows the customer order list. Nil fields are ignored.
type CustomerOrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.OrderPaymentStatus
}

// ListCustomerOrdersInput carries the filters and cursor of a list request.
type ListCustomerOrdersInput struct {
	CustomerID uuid.UUID
	Filters    CustomerOrderFilters
	Pagination pagination.Params
}

// openStatuses are the statuses an unassigned order can hold while it is
// offered to dealers. A prepaid order is confirmed before any dealer claims it.
var openStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
}

// statusCountOrder is the display order of the status counts.
var statusCountOrder = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
	enums.OrderStatusPreparing,
	enums.OrderStatusOnTheWay,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
}

// dealerOrderPriority orders a dealer's queue: in-flight work first.
const dealerOrderPriority = `CASE status
	WHEN 'on_the_way' THEN 1
	WHEN 'preparing' THEN 2
	WHEN 'confirmed' THEN 3
	WHEN 'delivered' THEN 4
	ELSE 5 END`

const (
	availableScanLimit = 200
	dealerOrdersLimit  = 200
)
