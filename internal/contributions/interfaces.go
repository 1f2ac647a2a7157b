package contributions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

// Repository is the persistence boundary for contributions. Lifecycle
// transitions are conditional updates: each one carries its precondition in
// the WHERE clause and reports the number of rows it touched, so concurrent
// writers cannot skip a state and the loser of a race observes zero rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contribution, error)

	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Contribution, error)
	ListQueue(ctx context.Context, params pagination.Params) ([]models.Contribution, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Contribution, error)
	ListByStatus(ctx context.Context, status enums.ContributionStatus, params pagination.Params) ([]models.Contribution, error)

	// Assign moves pending+unassigned to assigned. Zero rows means the
	// precondition no longer holds (row gone, already assigned, or not pending).
	Assign(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	// Unassign moves assigned back to pending, only for the current assignee.
	Unassign(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	// Approve moves assigned to approved, only for the current assignee.
	Approve(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	// Reject moves assigned to rejected with a reason, only for the assignee.
	Reject(ctx context.Context, id, agentID uuid.UUID, reason enums.RejectionReason) (int64, error)
	// Revoke moves rejected back to pending, clearing assignee and reason.
	Revoke(ctx context.Context, id uuid.UUID) (int64, error)
	// Delete removes the row when it still belongs to the given owner.
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
}
