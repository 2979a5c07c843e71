package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting an admin JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Email     string
	Role      enums.AccountRole
	JTI       string
}

// AccessTokenClaims is the typed JWT issued to back-office clients.
type AccessTokenClaims struct {
	AccountID uuid.UUID         `json:"account_id"`
	Email     string            `json:"email"`
	Role      enums.AccountRole `json:"role"`
	jwt.RegisteredClaims
}
