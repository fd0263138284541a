package billing

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	"github.com/mtaanigas/fulfillment-backend/internal/payments"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

type refundPaymentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// AdminPendingPayments lists payments still awaiting confirmation.
func AdminPendingPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		pending, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payments": pending, "count": len(pending)})
	}
}

// AdminConfirmPayment marks an open payment paid without a code.
func AdminConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		adminID, paymentID, err := adminPaymentTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminConfirm(r.Context(), adminID, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, completionResponse{Message: "Payment confirmed", CompletionResult: result})
	}
}

// AdminRejectPayment fails an open payment with a reason.
func AdminRejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		adminID, paymentID, err := adminPaymentTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectPaymentRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminReject(r.Context(), adminID, paymentID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, completionResponse{Message: "Payment rejected", CompletionResult: result})
	}
}

// AdminRefundPayment refunds a paid payment.
func AdminRefundPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		adminID, paymentID, err := adminPaymentTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundPaymentRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refund(r.Context(), adminID, paymentID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, completionResponse{Message: "Payment refunded", CompletionResult: result})
	}
}

func adminPaymentTarget(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	adminID, err := middleware.ActorID(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	paymentID, err := validators.ParseUUIDParam(r, "paymentId", "payment id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return adminID, paymentID, nil
}
