package delivery

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/drive"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/whatsapp"
)

type messageSender interface {
	Send(ctx context.Context, ep whatsapp.Endpoint, msg whatsapp.Message) error
}

type documentStore interface {
	Upload(ctx context.Context, accessToken string, up drive.Upload) (*drive.File, error)
}

// WhatsAppChannel posts the invoice notice, linking the PDF when Drive is enabled.
type WhatsAppChannel struct {
	sender messageSender
	store  documentStore
	cfg    settings.WhatsAppConfig
	drive  settings.DriveConfig
	logg   *logger.Logger
}

// NewWhatsAppChannel binds a sender to the stored gateway settings. store may be nil.
func NewWhatsAppChannel(sender messageSender, store documentStore, cfg settings.WhatsAppConfig, driveCfg settings.DriveConfig, logg *logger.Logger) *WhatsAppChannel {
	if logg == nil {
		logg = logger.Nop()
	}
	return &WhatsAppChannel{sender: sender, store: store, cfg: cfg, drive: driveCfg, logg: logg}
}

// Deliver uploads the PDF first when possible. A failed upload still sends the text.
func (c *WhatsAppChannel) Deliver(ctx context.Context, msg Message) (bool, error) {
	out := whatsapp.Message{Phone: msg.Customer.Phone, Text: WhatsAppText(msg)}
	if url := c.upload(ctx, msg); url != "" {
		out.MediaURL = url
	}
	if err := c.sender.Send(ctx, whatsapp.Endpoint{URL: c.cfg.APIURL, APIKey: c.cfg.APIKey}, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *WhatsAppChannel) upload(ctx context.Context, msg Message) string {
	if c.store == nil || !c.drive.Enabled || len(msg.PDF) == 0 {
		return ""
	}
	file, err := c.store.Upload(ctx, c.drive.AccessToken, drive.Upload{
		Name:     AttachmentName(msg.InvoiceNumber),
		MimeType: "application/pdf",
		FolderID: c.drive.FolderID,
		Data:     msg.PDF,
	})
	if err != nil {
		c.logg.Error(ctx, "invoice upload to drive failed", err)
		return ""
	}
	return file.URL
}
