package enums

import "fmt"

// PaymentMethodType is the payment rail chosen for an order or stored method.
type PaymentMethodType string

const (
	PaymentMethodCash  PaymentMethodType = "cash"
	PaymentMethodMpesa PaymentMethodType = "mpesa"
	PaymentMethodCard  PaymentMethodType = "card"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodCash,
	PaymentMethodMpesa,
	PaymentMethodCard,
}

// String implements fmt.Stringer.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodType.
func (p PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType converts raw input into a PaymentMethodType.
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	for _, candidate := range validPaymentMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// IsStorable reports whether the rail can be saved as a payment method.
func (p PaymentMethodType) IsStorable() bool {
	return p == PaymentMethodMpesa || p == PaymentMethodCard
}
