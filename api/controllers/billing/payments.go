package billing

import (
	"net/http"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	"github.com/mtaanigas/fulfillment-backend/internal/payments"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	OrderID         string `json:"order_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type verifyCodeRequest struct {
	PaymentID   string `json:"payment_id"`
	EnteredCode string `json:"entered_code"`
}

type initiateResponse struct {
	Message string `json:"message"`
	*payments.InitiateResult
}

type completionResponse struct {
	Message string `json:"message"`
	*payments.CompletionResult
}

// PaymentInitiate opens a simulated payment and returns its one-time code.
func PaymentInitiate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUID(payload.OrderID, "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		methodID, err := validators.ParseUUID(payload.PaymentMethodID, "payment method id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), payments.InitiateInput{
			CustomerID:      customerID,
			OrderID:         orderID,
			PaymentMethodID: methodID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, initiateResponse{
			Message:        "Payment initiated. Enter the verification code to complete payment.",
			InitiateResult: result,
		})
	}
}

// PaymentVerifyCode checks a submitted code. A wrong code answers 400 with
// attempts_remaining; the attempt still counts.
func PaymentVerifyCode(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.PaymentID == "" || payload.EnteredCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Payment ID and verification code are required"))
			return
		}
		paymentID, err := validators.ParseUUID(payload.PaymentID, "payment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyCode(r.Context(), payments.VerifyCodeInput{
			CustomerID: customerID,
			PaymentID:  paymentID,
			Code:       payload.EnteredCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, completionResponse{
			Message:          "Payment completed successfully",
			CompletionResult: result,
		})
	}
}

// PaymentStatus reports the payment state of one of the caller's orders.
func PaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
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

		status, err := svc.GetOrderPaymentStatus(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

// PaymentHistory lists the caller's payments, newest first.
func PaymentHistory(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		customerID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.ListHistory(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payments": history, "count": len(history)})
	}
}
