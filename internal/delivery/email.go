package delivery

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/mailer"
)

type emailSender interface {
	Send(ctx context.Context, cfg mailer.SMTPConfig, email mailer.Email) error
}

// EmailChannel sends the invoice as an SMTP attachment.
type EmailChannel struct {
	sender emailSender
	cfg    settings.EmailConfig
}

// NewEmailChannel binds a sender to the stored SMTP settings.
func NewEmailChannel(sender emailSender, cfg settings.EmailConfig) *EmailChannel {
	return &EmailChannel{sender: sender, cfg: cfg}
}

func (c *EmailChannel) Deliver(ctx context.Context, msg Message) (bool, error) {
	email := mailer.Email{
		To:      msg.Customer.Email,
		Subject: EmailSubject(msg),
		HTML:    EmailBody(),
	}
	if len(msg.PDF) > 0 {
		email.Attachments = []mailer.Attachment{{
			Filename:    AttachmentName(msg.InvoiceNumber),
			ContentType: "application/pdf",
			Data:        msg.PDF,
		}}
	}
	cfg := mailer.SMTPConfig{
		Host:     c.cfg.SMTPHost,
		Port:     c.cfg.SMTPPort,
		Username: c.cfg.SMTPUser,
		Password: c.cfg.SMTPPassword,
		From:     c.cfg.FromEmail,
	}
	if err := c.sender.Send(ctx, cfg, email); err != nil {
		return false, err
	}
	return true, nil
}
