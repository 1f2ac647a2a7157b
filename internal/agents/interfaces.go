package agents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

// Repository is the persistence boundary for the service-agent directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, agent *models.ServiceAgent) (*models.ServiceAgent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceAgent, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.ServiceAgent, error)
	List(ctx context.Context) ([]models.ServiceAgent, error)
	// ResolveNames maps agent ids to display names; unknown ids are omitted.
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	// TouchActivity stamps last_active; called on every authenticated request.
	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error
	// ListIdle returns logged-in agents whose last activity predates the cutoff.
	ListIdle(ctx context.Context, cutoff time.Time) ([]models.ServiceAgent, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
