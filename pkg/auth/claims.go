package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. The role
// is derived from the designated admin email before minting, never stored.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
