package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the admin login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session. The access token may be expired.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse contains the tokens and the authenticated account.
type LoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	Account      AccountDTO `json:"account"`
}

// AccountDTO is the public view of an account; the password hash never leaves the service.
type AccountDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Role        enums.AccountRole `json:"role"`
	IsActive    bool              `json:"is_active"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func ToDTO(a models.Account) AccountDTO {
	return AccountDTO{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		IsActive:    a.IsActive,
		ExpiresAt:   a.ExpiresAt,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}

// CreateAccountRequest opens a new back-office account. Temporary accounts
// must say how many days they live.
type CreateAccountRequest struct {
	Email         string            `json:"email" validate:"required,email"`
	Password      string            `json:"password" validate:"required,min=8"`
	Role          enums.AccountRole `json:"role" validate:"required"`
	ExpiresInDays *int              `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}

// UpdateAccountRequest changes the provided fields only.
type UpdateAccountRequest struct {
	Email         *string            `json:"email,omitempty" validate:"omitempty,email"`
	Password      *string            `json:"password,omitempty" validate:"omitempty,min=8"`
	Role          *enums.AccountRole `json:"role,omitempty"`
	ExpiresInDays *int               `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}
