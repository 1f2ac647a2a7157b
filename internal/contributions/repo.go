package contributions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a contributions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error) {
	if err := r.db.WithContext(ctx).Create(contribution).Error; err != nil {
		return nil, err
	}
	return contribution, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contribution, error) {
	var contribution models.Contribution
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&contribution).Error
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Contribution, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return r.list(query, params)
}

func (r *repository) ListQueue(ctx context.Context, params pagination.Params) ([]models.Contribution, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND assigned_agent_id IS NULL", enums.ContributionStatusPending)
	return r.list(query, params)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Contribution, error) {
	query := r.db.WithContext(ctx).Where("assigned_agent_id = ?", agentID)
	return r.list(query, params)
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ContributionStatus, params pagination.Params) ([]models.Contribution, error) {
	query := r.db.WithContext(ctx).Where("status = ?", status)
	return r.list(query, params)
}

func (r *repository) list(query *gorm.DB, params pagination.Params) ([]models.Contribution, error) {
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

	var contributions []models.Contribution
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&contributions).Error
	if err != nil {
		return nil, err
	}
	return contributions, nil
}

func (r *repository) Assign(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ? AND assigned_agent_id IS NULL", id, enums.ContributionStatusPending).
		Updates(map[string]any{
			"status":            enums.ContributionStatusAssigned,
			"assigned_agent_id": agentID,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Unassign(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ? AND assigned_agent_id = ?", id, enums.ContributionStatusAssigned, agentID).
		Updates(map[string]any{
			"status":            enums.ContributionStatusPending,
			"assigned_agent_id": nil,
			"rejection_reason":  nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Approve(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ? AND assigned_agent_id = ?", id, enums.ContributionStatusAssigned, agentID).
		Update("status", enums.ContributionStatusApproved)
	return res.RowsAffected, res.Error
}

func (r *repository) Reject(ctx context.Context, id, agentID uuid.UUID, reason enums.RejectionReason) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ? AND assigned_agent_id = ?", id, enums.ContributionStatusAssigned, agentID).
		Updates(map[string]any{
			"status":           enums.ContributionStatusRejected,
			"rejection_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Revoke(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ?", id, enums.ContributionStatusRejected).
		Updates(map[string]any{
			"status":            enums.ContributionStatusPending,
			"assigned_agent_id": nil,
			"rejection_reason":  nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Contribution{})
	return res.RowsAffected, res.Error
}
