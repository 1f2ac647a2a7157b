package auditlog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit log repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ContributionAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByContribution(ctx context.Context, contributionID uuid.UUID, params pagination.Params) ([]models.ContributionAuditLog, error) {
	query := r.db.WithContext(ctx).
		Where("contribution_id = ?", contributionID)
	return r.list(ctx, query, params)
}

func (r *repository) ListByActor(ctx context.Context, actorID uuid.UUID, params pagination.Params) ([]models.ContributionAuditLog, error) {
	query := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID)
	return r.list(ctx, query, params)
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.ContributionAuditLog, error) {
	return r.list(ctx, r.db.WithContext(ctx), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) ([]models.ContributionAuditLog, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.ContributionAuditLog
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
