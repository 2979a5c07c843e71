package enums

import "fmt"

// PaymentMethod records how the customer chose to receive the invoice.
type PaymentMethod string

const (
	PaymentMethodUPI      PaymentMethod = "upi"
	PaymentMethodEmail    PaymentMethod = "email"
	PaymentMethodWhatsApp PaymentMethod = "whatsapp"
)

var validPaymentMethodValues = []PaymentMethod{
	PaymentMethodUPI,
	PaymentMethodEmail,
	PaymentMethodWhatsApp,
}

func (v PaymentMethod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known payment method.
func (v PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethodValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethodValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// IsDeliveryChannel reports whether the method also names an invoice delivery channel.
func (v PaymentMethod) IsDeliveryChannel() bool {
	return v == PaymentMethodEmail || v == PaymentMethodWhatsApp
}
