package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// OrderItemDTO is the public shape of an order line.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderDTO summarizes an order for list views.
type OrderDTO struct {
	ID                  uuid.UUID                `json:"id"`
	CustomerID          uuid.UUID                `json:"customer_id"`
	DealerID            *uuid.UUID               `json:"dealer_id,omitempty"`
	Status              enums.OrderStatus        `json:"status"`
	PaymentStatus       enums.OrderPaymentStatus `json:"payment_status"`
	PaymentMethod       enums.PaymentMethodType  `json:"payment_method"`
	AssignmentStatus    enums.AssignmentStatus   `json:"assignment_status"`
	TotalAmount         decimal.Decimal          `json:"total_amount"`
	DeliveryLocation    string                   `json:"delivery_location"`
	DeliveryWard        string                   `json:"delivery_ward"`
	SpecialInstructions *string                  `json:"special_instructions,omitempty"`
	Items               []OrderItemDTO           `json:"items"`
	AssignmentExpiry    *time.Time               `json:"assignment_expiry,omitempty"`
	AssignedAt          *time.Time               `json:"assigned_at,omitempty"`
	DeliveredAt         *time.Time               `json:"delivered_at,omitempty"`
	CancelledAt         *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason        *string                  `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// HistoryEntryDTO is one status history row.
type HistoryEntryDTO struct {
	Status    enums.OrderStatus `json:"status"`
	ChangedBy string            `json:"changed_by"`
	Note      *string           `json:"note,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

// OrderDetailDTO is a single order with its history and counterpart.
type OrderDetailDTO struct {
	OrderDTO
	History  []HistoryEntryDTO  `json:"status_history"`
	Customer *users.UserSummary `json:"customer,omitempty"`
	Dealer   *users.UserSummary `json:"dealer,omitempty"`
}

// DealerRef names a dealer an order was offered to.
type DealerRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateOrderResult is returned by order placement.
type CreateOrderResult struct {
	Message          string                   `json:"message"`
	OrderID          uuid.UUID                `json:"order_id"`
	TotalAmount      decimal.Decimal          `json:"total_amount"`
	Status           enums.OrderStatus        `json:"status"`
	PaymentStatus    enums.OrderPaymentStatus `json:"payment_status"`
	DealersAvailable int                      `json:"dealers_available"`
	CustomerWard     string                   `json:"customer_ward"`
	AvailableDealers []DealerRef              `json:"available_dealers"`
	AssignmentExpiry time.Time                `json:"assignment_expiry"`
}

// ClaimedOrderDTO is the order fragment returned after a claim.
type ClaimedOrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	Status     enums.OrderStatus `json:"status"`
	DealerID   uuid.UUID         `json:"dealer_id"`
	AssignedAt time.Time         `json:"assigned_at"`
}

// AcceptResult is returned by a successful claim.
type AcceptResult struct {
	Message string          `json:"message"`
	Order   ClaimedOrderDTO `json:"order"`
}

// StatusUpdateDTO is the order fragment returned after a status change.
type StatusUpdateDTO struct {
	ID             uuid.UUID         `json:"id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// StatusUpdateResult is returned by AdvanceStatus.
type StatusUpdateResult struct {
	Message string          `json:"message"`
	Order   StatusUpdateDTO `json:"order"`
}

// CancelResult is returned by a customer cancellation.
type CancelResult struct {
	Message string            `json:"message"`
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

// CustomerOrderList is a page of a customer's orders.
type CustomerOrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// StatusCount is one bucket of the status breakdown.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

// StatusCountsResult lists every status bucket in display order.
type StatusCountsResult struct {
	StatusCounts []StatusCount `json:"status_counts"`
}

// OrderStats summarizes a customer's order activity.
type OrderStats struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	ConfirmedOrders int64           `json:"confirmedOrders"`
	OnTheWayOrders  int64           `json:"onTheWayOrders"`
	DeliveredOrders int64           `json:"deliveredOrders"`
	ActiveOrders    int64           `json:"activeOrders"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
}

// LocationMatch explains why an order was shown to a dealer.
type LocationMatch struct {
	Score        int    `json:"score"`
	SameWard     bool   `json:"same_ward"`
	AgentWard    string `json:"agent_ward"`
	CustomerWard string `json:"customer_ward"`
}

// AvailableOrderDTO is an open order as seen by a dealer.
type AvailableOrderDTO struct {
	OrderDTO
	Customer      *users.UserSummary `json:"customer,omitempty"`
	LocationMatch LocationMatch      `json:"location_match"`
}

// LocationInfo summarizes the dealer's ward filter.
type LocationInfo struct {
	AgentWard      string `json:"agent_ward"`
	SameWardOrders int    `json:"same_ward_orders"`
	OtherOrders    int    `json:"other_orders"`
}

// AvailableOrdersResult lists the orders a dealer may claim, best match first.
type AvailableOrdersResult struct {
	AvailableOrders []AvailableOrderDTO `json:"available_orders"`
	Count           int                 `json:"count"`
	LocationInfo    LocationInfo        `json:"location_info"`
}

// DealerOrderDTO is an assigned order as seen by its dealer.
type DealerOrderDTO struct {
	OrderDTO
	Customer *users.UserSummary `json:"customer,omitempty"`
}

// DealerOrderList is a dealer's queue, in-flight work first.
type DealerOrderList struct {
	Orders []DealerOrderDTO `json:"orders"`
	Count  int              `json:"count"`
}

func newOrderDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.LineTotal,
		})
	}
	return OrderDTO{
		ID:                  order.ID,
		CustomerID:          order.CustomerID,
		DealerID:            order.DealerID,
		Status:              order.Status,
		PaymentStatus:       order.PaymentStatus,
		PaymentMethod:       order.PaymentMethod,
		AssignmentStatus:    order.AssignmentStatus,
		TotalAmount:         order.TotalAmount,
		DeliveryLocation:    order.DeliveryLocation,
		DeliveryWard:        order.DeliveryWard,
		SpecialInstructions: order.SpecialInstructions,
		Items:               items,
		AssignmentExpiry:    order.AssignmentExpiry,
		AssignedAt:          order.AssignedAt,
		DeliveredAt:         order.DeliveredAt,
		CancelledAt:         order.CancelledAt,
		CancelReason:        order.CancelReason,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

func newHistoryDTOs(rows []models.OrderStatusHistory) []HistoryEntryDTO {
	out := make([]HistoryEntryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryEntryDTO{
			Status:    row.Status,
			ChangedBy: row.ChangedBy,
			Note:      row.Note,
			ChangedAt: row.CreatedAt,
		})
	}
	return out
}
