// Package delivery sends issued invoices to customers over email or WhatsApp.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/documents"
)

// ErrChannelDisabled is returned when the chosen channel is not enabled in settings.
var ErrChannelDisabled = errors.New("delivery channel disabled")

// Message is one invoice notification.
type Message struct {
	InvoiceNumber string
	OrderNumber   string
	Business      models.BusinessInfo
	Customer      models.CustomerInfo
	GrandTotal    decimal.Decimal
	PDF           []byte
}

// Channel delivers a Message, reporting false with the cause on failure.
type Channel interface {
	Deliver(ctx context.Context, msg Message) (bool, error)
}

// AttachmentName is the invoice PDF file name.
func AttachmentName(invoiceNumber string) string {
	return fmt.Sprintf("Invoice_%s.pdf", invoiceNumber)
}

// EmailSubject is "Invoice <number> - <business>".
func EmailSubject(msg Message) string {
	return fmt.Sprintf("Invoice %s - %s", msg.InvoiceNumber, msg.Business.Name)
}

// EmailBody is the HTML sent with the attachment.
func EmailBody() string {
	return "<h2>Thank you for your order!</h2><p>Please find your invoice attached.</p>"
}

// WhatsAppText is the message sent with the document link.
func WhatsAppText(msg Message) string {
	return fmt.Sprintf("Thank you for your order! Your invoice number is %s. Total amount: %s",
		msg.InvoiceNumber, documents.Rupees(msg.GrandTotal))
}
