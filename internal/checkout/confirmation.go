package checkout

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Confirmation is the answer of a payment confirmation source.
type Confirmation struct {
	Confirmed bool
	Reference string
}

// PaymentConfirmationSource decides whether the customer paid for an order.
type PaymentConfirmationSource interface {
	Confirm(ctx context.Context, order models.Order) (Confirmation, error)
}

// SelfAttestation accepts the customer's claim that the UPI transfer was made.
type SelfAttestation struct{}

func (SelfAttestation) Confirm(context.Context, models.Order) (Confirmation, error) {
	return Confirmation{Confirmed: true}, nil
}
