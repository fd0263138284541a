package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// PaymentDTO is the API view of a payment. The code hash never leaves the
// service.
type PaymentDTO struct {
	ID                   uuid.UUID               `json:"id"`
	OrderID              uuid.UUID               `json:"order_id"`
	CustomerID           uuid.UUID               `json:"customer_id"`
	Method               enums.PaymentMethodType `json:"method"`
	Amount               decimal.Decimal         `json:"amount"`
	Status               enums.PaymentStatus     `json:"status"`
	TransactionID        string                  `json:"transaction_id"`
	PhoneNumber          *string                 `json:"phone_number,omitempty"`
	CardLast4            *string                 `json:"card_last4,omitempty"`
	CardBrand            *string                 `json:"card_brand,omitempty"`
	VerificationAttempts int                     `json:"verification_attempts"`
	ExpiresAt            time.Time               `json:"expires_at"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	RefundedAt           *time.Time              `json:"refunded_at,omitempty"`
	FailureReason        *string                 `json:"failure_reason,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
}

// InitiateResult is returned once per simulation. SimulationCode is the only
// place the plain code ever appears.
type InitiateResult struct {
	PaymentID      uuid.UUID               `json:"payment_id"`
	OrderID        uuid.UUID               `json:"order_id"`
	TransactionID  string                  `json:"transaction_id"`
	Method         enums.PaymentMethodType `json:"method"`
	Amount         decimal.Decimal         `json:"amount"`
	Status         enums.PaymentStatus     `json:"status"`
	SimulationCode string                  `json:"simulation_code"`
	ExpiresIn      int                     `json:"expires_in"`
	ExpiresAt      time.Time               `json:"expires_at"`
}

// CompletionResult describes a payment that reached a terminal state.
type CompletionResult struct {
	PaymentID     uuid.UUID                `json:"payment_id"`
	OrderID       uuid.UUID                `json:"order_id"`
	TransactionID string                   `json:"transaction_id"`
	Status        enums.PaymentStatus      `json:"status"`
	OrderStatus   enums.OrderStatus        `json:"order_status"`
	PaymentStatus enums.OrderPaymentStatus `json:"payment_status"`
}

// OrderPaymentStatus answers the payment status poll of an order.
type OrderPaymentStatus struct {
	OrderID       uuid.UUID                `json:"order_id"`
	Status        string                   `json:"status"`
	PaymentStatus enums.OrderPaymentStatus `json:"payment_status"`
	Payment       *PaymentDTO              `json:"payment,omitempty"`
}

func newPaymentDTO(p models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                   p.ID,
		OrderID:              p.OrderID,
		CustomerID:           p.CustomerID,
		Method:               p.Method,
		Amount:               p.Amount,
		Status:               p.Status,
		TransactionID:        p.TransactionID,
		PhoneNumber:          p.PhoneNumber,
		CardLast4:            p.CardLast4,
		CardBrand:            p.CardBrand,
		VerificationAttempts: p.VerificationAttempts,
		ExpiresAt:            p.SimulationExpiresAt,
		CompletedAt:          p.CompletedAt,
		RefundedAt:           p.RefundedAt,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt,
	}
}

func newPaymentDTOs(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, newPaymentDTO(p))
	}
	return out
}
