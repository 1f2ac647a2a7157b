package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	Role    enums.Role
	AgentID *uuid.UUID
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. Role is
// signed into the token and never read from request input.
type AccessTokenClaims struct {
	UserID  uuid.UUID  `json:"user_id"`
	Email   string     `json:"email"`
	Role    enums.Role `json:"role"`
	AgentID *uuid.UUID `json:"agent_id,omitempty"`
	jwt.RegisteredClaims
}
