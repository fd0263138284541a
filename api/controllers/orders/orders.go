package orders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	internalorders "github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

type createOrderRequest struct {
	DeliveryLocation    string  `json:"delivery_location"`
	PaymentMethod       string  `json:"payment_method,omitempty"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

type cancelOrderRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// Create checks out the caller's cart into a new order.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateFromCart(r.Context(), internalorders.CreateOrderInput{
			CustomerID:          customerID,
			DeliveryLocation:    payload.DeliveryLocation,
			PaymentMethod:       payload.PaymentMethod,
			SpecialInstructions: payload.SpecialInstructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// List returns the caller's orders, newest first, with optional status filters.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildCustomerFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCustomerOrders(r.Context(), internalorders.ListCustomerOrdersInput{
			CustomerID: customerID,
			Filters:    filters,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// Detail returns one of the caller's orders with items and history.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetCustomerOrder(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order": detail})
	}
}

// StatusCounts returns the caller's order count per status.
func StatusCounts(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counts, err := svc.StatusCounts(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, counts)
	}
}

// Stats returns the caller's order totals and spend.
func Stats(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"stats": stats})
	}
}

// Cancel cancels one of the caller's orders while it is still pending or confirmed.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Cancel(r.Context(), internalorders.CancelOrderInput{
			OrderID:    orderID,
			CustomerID: customerID,
			Reason:     payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func buildCustomerFilters(r *http.Request) (internalorders.CustomerOrderFilters, error) {
	var filters internalorders.CustomerOrderFilters

	status, err := parseOrderStatusParam(r.URL.Query().Get("status"))
	if err != nil {
		return filters, err
	}
	filters.Status = status

	paymentStatus, err := parsePaymentStatusParam(r.URL.Query().Get("payment_status"))
	if err != nil {
		return filters, err
	}
	filters.PaymentStatus = paymentStatus

	return filters, nil
}

func parseOrderStatusParam(raw string) (*enums.OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", raw))
	}
	return &status, nil
}

func parsePaymentStatusParam(raw string) (*enums.OrderPaymentStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	status, err := enums.ParseOrderPaymentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid payment_status %q", raw))
	}
	return &status, nil
}
