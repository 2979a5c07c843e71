package enums

import "fmt"

// CheckoutStage is the customer-visible step of the checkout flow.
type CheckoutStage string

const (
	CheckoutStageDetails         CheckoutStage = "details"
	CheckoutStagePayment         CheckoutStage = "payment"
	CheckoutStageMethodSelection CheckoutStage = "method_selection"
	CheckoutStageSuccess         CheckoutStage = "success"
	CheckoutStageAborted         CheckoutStage = "aborted"
)

var validCheckoutStageValues = []CheckoutStage{
	CheckoutStageDetails,
	CheckoutStagePayment,
	CheckoutStageMethodSelection,
	CheckoutStageSuccess,
	CheckoutStageAborted,
}

func (v CheckoutStage) String() string {
	return string(v)
}

// IsValid reports whether the value is a known checkout stage.
func (v CheckoutStage) IsValid() bool {
	for _, candidate := range validCheckoutStageValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCheckoutStage converts the raw string to CheckoutStage.
func ParseCheckoutStage(value string) (CheckoutStage, error) {
	for _, candidate := range validCheckoutStageValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout stage %q", value)
}

// Next returns the stage reached by a successful transition out of v.
func (v CheckoutStage) Next() (CheckoutStage, bool) {
	switch v {
	case CheckoutStageDetails:
		return CheckoutStagePayment, true
	case CheckoutStagePayment:
		return CheckoutStageMethodSelection, true
	case CheckoutStageMethodSelection:
		return CheckoutStageSuccess, true
	default:
		return v, false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (v CheckoutStage) IsTerminal() bool {
	return v == CheckoutStageSuccess || v == CheckoutStageAborted
}
