package billing

import (
	"net/http"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/api/validators"
	"github.com/mtaanigas/fulfillment-backend/internal/paymentmethods"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type mpesaMethodRequest struct {
	Phone string `json:"phone"`
}

// Card fields are checked by the service so its messages reach the caller.
type cardMethodRequest struct {
	CardNumber     string `json:"card_number"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

type paymentMethodResponse struct {
	Message       string                           `json:"message,omitempty"`
	PaymentMethod *paymentmethods.PaymentMethodDTO `json:"payment_method"`
}

// PaymentMethodList returns the caller's active payment methods, default first.
func PaymentMethodList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methods, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payment_methods": methods})
	}
}

// PaymentMethodDefault returns the caller's default method, or null.
func PaymentMethodDefault(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.GetDefault(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentMethodResponse{PaymentMethod: method})
	}
}

// PaymentMethodAddMpesa registers the caller's M-Pesa number.
func PaymentMethodAddMpesa(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mpesaMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.AddMpesa(r.Context(), userID, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentMethodResponse{
			Message:       "M-Pesa payment method added successfully",
			PaymentMethod: method,
		})
	}
}

// PaymentMethodAddCard registers a card. Only the last four digits are kept.
func PaymentMethodAddCard(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cardMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.AddCard(r.Context(), userID, paymentmethods.AddCardInput{
			CardNumber:     payload.CardNumber,
			ExpiryMonth:    payload.ExpiryMonth,
			ExpiryYear:     payload.ExpiryYear,
			CVV:            payload.CVV,
			CardholderName: payload.CardholderName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentMethodResponse{
			Message:       "Card added successfully",
			PaymentMethod: method,
		})
	}
}

// PaymentMethodSetDefault makes one of the caller's methods the default.
func PaymentMethodSetDefault(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methodID, err := validators.ParseUUIDParam(r, "methodId", "payment method id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.SetDefault(r.Context(), userID, methodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentMethodResponse{
			Message:       "Default payment method updated",
			PaymentMethod: method,
		})
	}
}

// PaymentMethodDelete deactivates a non-default method.
func PaymentMethodDelete(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}

		userID, err := middleware.ActorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methodID, err := validators.ParseUUIDParam(r, "methodId", "payment method id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, methodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Payment method deleted successfully"})
	}
}
