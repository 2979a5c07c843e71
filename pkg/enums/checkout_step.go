package enums

import "fmt"

// CheckoutStep names a side effect recorded in the checkout step log.
type CheckoutStep string

const (
	CheckoutStepOrderCreated         CheckoutStep = "order_created"
	CheckoutStepInvoicePersisted     CheckoutStep = "invoice_persisted"
	CheckoutStepInvoiceDelivered     CheckoutStep = "invoice_delivered"
	CheckoutStepMirrorAppended       CheckoutStep = "mirror_appended"
	CheckoutStepOrderCompleted       CheckoutStep = "order_completed"
	CheckoutStepAnalyticsIncremented CheckoutStep = "analytics_incremented"
	CheckoutStepCartCleared          CheckoutStep = "cart_cleared"
)

var validCheckoutStepValues = []CheckoutStep{
	CheckoutStepOrderCreated,
	CheckoutStepInvoicePersisted,
	CheckoutStepInvoiceDelivered,
	CheckoutStepMirrorAppended,
	CheckoutStepOrderCompleted,
	CheckoutStepAnalyticsIncremented,
	CheckoutStepCartCleared,
}

func (v CheckoutStep) String() string {
	return string(v)
}

// IsValid reports whether the value is a known checkout step.
func (v CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutStepValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCheckoutStep converts the raw string to CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutStepValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}

// RetrySafe reports whether the reconciliation job may replay a failed step.
// Delivery and mirror steps are not idempotent on the remote side.
func (v CheckoutStep) RetrySafe() bool {
	return v == CheckoutStepOrderCompleted || v == CheckoutStepAnalyticsIncremented
}
