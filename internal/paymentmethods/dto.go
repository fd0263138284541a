package paymentmethods

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// PaymentMethodDTO is the client view of a saved method.
type PaymentMethodDTO struct {
	ID          uuid.UUID               `json:"id"`
	Type        enums.PaymentMethodType `json:"type"`
	Provider    string                  `json:"provider"`
	LastFour    *string                 `json:"last_four,omitempty"`
	PhoneNumber *string                 `json:"phone_number,omitempty"`
	IsDefault   bool                    `json:"is_default"`
	Metadata    json.RawMessage         `json:"metadata,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// CardMetadata is stored alongside a card method. The card number and CVV
// are never persisted.
type CardMetadata struct {
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
}

func newPaymentMethodDTO(m models.PaymentMethod) PaymentMethodDTO {
	return PaymentMethodDTO{
		ID:          m.ID,
		Type:        m.Type,
		Provider:    m.Provider,
		LastFour:    m.LastFour,
		PhoneNumber: m.PhoneNumber,
		IsDefault:   m.IsDefault,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
	}
}

func newPaymentMethodDTOs(methods []models.PaymentMethod) []PaymentMethodDTO {
	out := make([]PaymentMethodDTO, 0, len(methods))
	for _, m := range methods {
		out = append(out, newPaymentMethodDTO(m))
	}
	return out
}
