package checkout

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const customLogoMarker = "custom"

var fieldValidator = validator.New()

// Customer is the contact triple captured before an order is created.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Normalize trims every field.
func (c Customer) Normalize() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
}

// ValidateCustomer requires every contact field and a bare email address.
func ValidateCustomer(c Customer) error {
	c = c.Normalize()
	details := map[string]string{}
	if c.Name == "" {
		details["name"] = "is required"
	}
	if c.Phone == "" {
		details["phone"] = "is required"
	}
	if c.Email == "" {
		details["email"] = "is required"
	} else if err := fieldValidator.Var(c.Email, "email"); err != nil {
		details["email"] = "must be a valid email"
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "customer details incomplete").WithDetails(details)
}

// VariantInput is one chosen product configuration.
type VariantInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Color       string
	Size        string
	Logo        string
	Colors      []string
	Sizes       []string
	LogoOptions []string
}

// VariantViolationDetail explains why a chosen configuration was rejected.
type VariantViolationDetail struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Field       string    `json:"field"`
	Value       string    `json:"value"`
}

// ValidateVariant ensures quantity is positive and each chosen option is one the product offers.
func ValidateVariant(in VariantInput) error {
	if in.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").WithDetails(map[string]string{"quantity": "must be at least 1"})
	}
	var violations []VariantViolationDetail
	check := func(field, value string, allowed []string) {
		if !contains(allowed, value) {
			violations = append(violations, VariantViolationDetail{
				ProductID:   in.ProductID,
				ProductName: in.ProductName,
				Field:       field,
				Value:       value,
			})
		}
	}
	check("color", in.Color, in.Colors)
	check("size", in.Size, in.Sizes)
	check("logo", in.Logo, in.LogoOptions)
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d option(s) not offered for this product", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

// IsCustomLogo reports whether the logo option accepts free-text customization.
func IsCustomLogo(logo string) bool {
	return strings.Contains(strings.ToLower(logo), customLogoMarker)
}

// CustomText returns text trimmed when logo is a custom option and empty otherwise.
func CustomText(logo, text string) string {
	if !IsCustomLogo(logo) {
		return ""
	}
	return strings.TrimSpace(text)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
