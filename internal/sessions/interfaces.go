package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

// Repository persists agent attendance intervals. Opening relies on the
// partial unique index over (agent_id, session_date) for open rows, so the
// insert itself is the idempotency check; closing is guarded by
// logout_time IS NULL and safe to repeat.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// OpenIfMissing inserts a new open session for the agent and day unless
	// one already exists. Reports whether a row was created.
	OpenIfMissing(ctx context.Context, agentID uuid.UUID, loginTime time.Time) (bool, error)
	// FindOpen returns the agent's open sessions, oldest first.
	FindOpen(ctx context.Context, agentID uuid.UUID) ([]models.AgentLoginSession, error)
	// CloseOpen stamps logout_time on every open session for the agent and
	// returns the rows it closed.
	CloseOpen(ctx context.Context, agentID uuid.UUID, logoutTime time.Time) ([]models.AgentLoginSession, error)
	// ListRange returns sessions whose login time falls inside [from, to).
	ListRange(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]models.AgentLoginSession, error)
}
