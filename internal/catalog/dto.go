package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ProductDTO is the API shape of a product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	LogoOptions []string        `json:"logo_options"`
	IsActive    bool            `json:"is_active"`
	Purchasable bool            `json:"purchasable"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=4000"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" validate:"max=2048"`
	Colors      []string        `json:"colors" validate:"dive,required"`
	Sizes       []string        `json:"sizes" validate:"dive,required"`
	LogoOptions []string        `json:"logo_options" validate:"dive,required"`
	IsActive    *bool           `json:"is_active"`
}

func toDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Colors:      nonNil(p.Colors),
		Sizes:       nonNil(p.Sizes),
		LogoOptions: nonNil(p.LogoOptions),
		IsActive:    p.IsActive,
		Purchasable: p.Purchasable(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
