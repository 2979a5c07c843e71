package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// AnalyticsCounter is unique per (product, metric, day).
type AnalyticsCounter struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:analytics_product_metric_date"`
	MetricType enums.MetricType `gorm:"column:metric_type;not null;uniqueIndex:analytics_product_metric_date"`
	Date       datatypes.Date   `gorm:"column:date;type:date;not null;uniqueIndex:analytics_product_metric_date"`
	Value      int64            `gorm:"column:value;not null;default:0"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (AnalyticsCounter) TableName() string { return "analytics" }

func (a *AnalyticsCounter) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
