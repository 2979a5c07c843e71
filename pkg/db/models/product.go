package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a catalog listing. Option slices must be non-empty for the
// product to be purchasable.
type Product struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                      `gorm:"column:name;not null"`
	Description string                      `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal             `gorm:"column:price;type:numeric(12,2);not null"`
	Image       string                      `gorm:"column:image;not null;default:''"`
	Colors      datatypes.JSONSlice[string] `gorm:"column:colors;type:jsonb;not null"`
	Sizes       datatypes.JSONSlice[string] `gorm:"column:sizes;type:jsonb;not null"`
	LogoOptions datatypes.JSONSlice[string] `gorm:"column:logo_options;type:jsonb;not null"`
	IsActive    bool                        `gorm:"column:is_active;not null"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Purchasable reports whether every option set offers at least one choice.
func (p Product) Purchasable() bool {
	return p.IsActive && len(p.Colors) > 0 && len(p.Sizes) > 0 && len(p.LogoOptions) > 0
}
