package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// ActorTokenPayload captures the data available when minting a JWT.
type ActorTokenPayload struct {
	UserID uuid.UUID
	Role   enums.ActorRole
	JTI    string
}

// ActorTokenClaims represents the typed JWT issued to floor devices.
type ActorTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
