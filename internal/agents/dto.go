package agents

import (
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

// CreateAgentInput carries the admin-provided fields for onboarding an agent.
type CreateAgentInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty"`
}

// AgentDTO is the directory projection of a service agent.
type AgentDTO struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	LoggedIn   bool       `json:"logged_in"`
	LastActive *time.Time `json:"last_active,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreatedAgentDTO pairs the new agent with its one-time temporary password.
// The password is returned exactly once and never stored in the clear.
type CreatedAgentDTO struct {
	Agent        AgentDTO `json:"agent"`
	TempPassword string   `json:"temp_password"`
}

// FromModel converts a persisted agent into its DTO projection.
func FromModel(agent models.ServiceAgent) AgentDTO {
	return AgentDTO{
		ID:         agent.ID,
		UserID:     agent.UserID,
		Name:       agent.Name,
		Email:      agent.Email,
		Phone:      agent.Phone,
		LoggedIn:   agent.LoggedIn,
		LastActive: agent.LastActive,
		CreatedAt:  agent.CreatedAt,
	}
}
