package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UID   string
	Email string
	Role  enums.ActorRole
	JTI   string
}

// AccessTokenClaims represents the typed JWT issued to portal clients.
type AccessTokenClaims struct {
	UID   string          `json:"uid"`
	Email string          `json:"email"`
	Role  enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
