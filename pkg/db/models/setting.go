package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Setting is one keyed block of integration configuration.
type Setting struct {
	Key       enums.SettingKey `gorm:"column:key;primaryKey"`
	Value     datatypes.JSON   `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }
