package delivery

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Dispatcher picks the channel for a payment method from the settings snapshot.
type Dispatcher struct {
	email    emailSender
	whatsapp messageSender
	store    documentStore
	logg     *logger.Logger
}

// NewDispatcher wires the provider clients. store may be nil.
func NewDispatcher(email emailSender, wa messageSender, store documentStore, logg *logger.Logger) (*Dispatcher, error) {
	if email == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if wa == nil {
		return nil, fmt.Errorf("whatsapp sender required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{email: email, whatsapp: wa, store: store, logg: logg}, nil
}

// Channel returns the enabled channel for method or ErrChannelDisabled.
func (d *Dispatcher) Channel(method enums.PaymentMethod, snap settings.Snapshot) (Channel, error) {
	switch method {
	case enums.PaymentMethodEmail:
		if !snap.Email.Enabled {
			return nil, ErrChannelDisabled
		}
		return NewEmailChannel(d.email, snap.Email), nil
	case enums.PaymentMethodWhatsApp:
		if !snap.WhatsApp.Enabled {
			return nil, ErrChannelDisabled
		}
		return NewWhatsAppChannel(d.whatsapp, d.store, snap.WhatsApp, snap.Drive, d.logg), nil
	default:
		return nil, fmt.Errorf("%s is not a delivery channel", method)
	}
}

// Deliver sends msg through the channel for method. Provider failures are
// logged and reported as false; they never panic or block the caller.
func (d *Dispatcher) Deliver(ctx context.Context, method enums.PaymentMethod, snap settings.Snapshot, msg Message) (bool, error) {
	ch, err := d.Channel(method, snap)
	if err != nil {
		return false, err
	}
	ok, err := ch.Deliver(ctx, msg)
	if err != nil {
		d.logg.Error(d.logg.WithField(ctx, "channel", method.String()), "invoice delivery failed", err)
		return false, err
	}
	return ok, nil
}
