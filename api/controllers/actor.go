package controllers

import (
	"net/http"

	"github.com/onestoplease/onestoplease-backend/api/middleware"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
)

// actorFromRequest lifts the signed token claims into a lifecycle actor.
// Role and agent id are never read from request input.
func actorFromRequest(r *http.Request) contributions.Actor {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return contributions.Actor{}
	}
	return contributions.Actor{
		UserID:  claims.UserID,
		AgentID: claims.AgentID,
		Email:   claims.Email,
		Role:    claims.Role,
	}
}
