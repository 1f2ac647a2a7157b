package admins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

// Repository is the persistence boundary for the admin directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an admins repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}
