package enums

import "fmt"

// SettingKey identifies a block in the integration settings store.
type SettingKey string

const (
	SettingKeyUPIID          SettingKey = "upi_id"
	SettingKeyBusinessInfo   SettingKey = "business_info"
	SettingKeyEmailConfig    SettingKey = "email_config"
	SettingKeyWhatsAppConfig SettingKey = "whatsapp_config"
	SettingKeyGoogleSheets   SettingKey = "google_sheets"
	SettingKeyGoogleDrive    SettingKey = "google_drive"
)

var validSettingKeyValues = []SettingKey{
	SettingKeyUPIID,
	SettingKeyBusinessInfo,
	SettingKeyEmailConfig,
	SettingKeyWhatsAppConfig,
	SettingKeyGoogleSheets,
	SettingKeyGoogleDrive,
}

func (v SettingKey) String() string {
	return string(v)
}

// IsValid reports whether the value is a known setting key.
func (v SettingKey) IsValid() bool {
	for _, candidate := range validSettingKeyValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseSettingKey converts the raw string to SettingKey.
func ParseSettingKey(value string) (SettingKey, error) {
	for _, candidate := range validSettingKeyValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid setting key %q", value)
}
