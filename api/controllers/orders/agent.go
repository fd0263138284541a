package orders

import (
	"net/http"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	internalorders "github.com/mtaanigas/fulfillment-backend/internal/orders"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type advanceStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AgentAccept claims an unassigned order for the calling dealer. Only the
// first of several concurrent claims succeeds; the rest get 404.
func AgentAccept(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		dealerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Accept(r.Context(), orderID, dealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AgentUpdateStatus moves an assigned order forward along the status graph.
func AgentUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		dealerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdvanceStatus(r.Context(), internalorders.AdvanceStatusInput{
			OrderID:  orderID,
			DealerID: dealerID,
			Status:   payload.Status,
			Note:     payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AgentAvailable lists unassigned orders ranked by ward proximity to the dealer.
func AgentAvailable(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		dealerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAvailable(r.Context(), dealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AgentMyOrders lists the orders assigned to the calling dealer.
func AgentMyOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		dealerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListDealerOrders(r.Context(), dealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AgentDetail returns an order assigned to the calling dealer.
func AgentDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		dealerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDealerOrder(r.Context(), dealerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order": detail})
	}
}
