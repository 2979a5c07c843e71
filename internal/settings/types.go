package settings

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// UPIIdentity is the payee printed into payment links.
type UPIIdentity struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// SheetsConfig targets the bookkeeping spreadsheet.
type SheetsConfig struct {
	SheetID string `json:"sheet_id" validate:"required_if=Enabled true"`
	APIKey  string `json:"api_key"`
	Enabled bool   `json:"enabled"`
}

// DriveConfig stores rendered invoices so messaging can link them.
type DriveConfig struct {
	FolderID    string `json:"folder_id"`
	AccessToken string `json:"access_token" validate:"required_if=Enabled true"`
	Enabled     bool   `json:"enabled"`
}

// EmailConfig is the SMTP relay used for invoice email.
type EmailConfig struct {
	SMTPHost     string `json:"smtp_host" validate:"required_if=Enabled true"`
	SMTPPort     int    `json:"smtp_port" validate:"omitempty,min=1,max=65535"`
	FromEmail    string `json:"from_email" validate:"required_if=Enabled true"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	Enabled      bool   `json:"enabled"`
}

// WhatsAppConfig is the messaging gateway.
type WhatsAppConfig struct {
	APIKey  string `json:"api_key" validate:"required_if=Enabled true"`
	APIURL  string `json:"api_url" validate:"required_if=Enabled true"`
	Enabled bool   `json:"enabled"`
}

// Snapshot is every block read once at the start of a checkout step.
// Missing blocks are zero values, which read as disabled.
type Snapshot struct {
	UPI      *UPIIdentity
	Business models.BusinessInfo
	Sheets   SheetsConfig
	Drive    DriveConfig
	Email    EmailConfig
	WhatsApp WhatsAppConfig
}
