package agents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an agents repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, agent *models.ServiceAgent) (*models.ServiceAgent, error) {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceAgent, error) {
	var agent models.ServiceAgent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.ServiceAgent, error) {
	var agent models.ServiceAgent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) List(ctx context.Context) ([]models.ServiceAgent, error) {
	var agents []models.ServiceAgent
	err := r.db.WithContext(ctx).
		Order("name ASC, created_at ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *repository) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	var agents []models.ServiceAgent
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&agents).Error
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(agents))
	for _, agent := range agents {
		names[agent.ID] = agent.Name
	}
	return names, nil
}

func (r *repository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceAgent{}).
		Where("id = ?", id).
		UpdateColumn("last_active", at.UTC()).Error
}

func (r *repository) SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceAgent{}).
		Where("id = ?", id).
		UpdateColumn("logged_in", loggedIn).Error
}

func (r *repository) ListIdle(ctx context.Context, cutoff time.Time) ([]models.ServiceAgent, error) {
	var agents []models.ServiceAgent
	err := r.db.WithContext(ctx).
		Where("logged_in = ? AND (last_active IS NULL OR last_active < ?)", true, cutoff.UTC()).
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ServiceAgent{})
	return res.RowsAffected, res.Error
}
