package auditlog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

// Repository persists and queries immutable audit entries. Entries are only
// ever inserted; there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ContributionAuditLog) error
	ListByContribution(ctx context.Context, contributionID uuid.UUID, params pagination.Params) ([]models.ContributionAuditLog, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, params pagination.Params) ([]models.ContributionAuditLog, error)
	List(ctx context.Context, params pagination.Params) ([]models.ContributionAuditLog, error)
}
