package admins

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/internal/users"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/security"
)

const tempPasswordLength = 16

// CreateAdminInput carries the fields for provisioning a back-office admin.
type CreateAdminInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty"`
}

// AdminDTO is the directory projection of an admin.
type AdminDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatedAdminDTO pairs the new admin with its one-time temporary password.
type CreatedAdminDTO struct {
	Admin        AdminDTO `json:"admin"`
	TempPassword string   `json:"temp_password"`
}

// FromModel converts a persisted admin into its DTO projection.
func FromModel(admin models.Admin) AdminDTO {
	return AdminDTO{
		ID:        admin.ID,
		UserID:    admin.UserID,
		Name:      admin.Name,
		Email:     admin.Email,
		Phone:     admin.Phone,
		CreatedAt: admin.CreatedAt,
	}
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service provisions and lists back-office admins.
type Service interface {
	Create(ctx context.Context, input CreateAdminInput) (*CreatedAdminDTO, error)
	List(ctx context.Context) ([]AdminDTO, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*AdminDTO, error)
}

// ServiceParams names the dependencies for the admin directory.
type ServiceParams struct {
	Repo           Repository
	TX             txRunner
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo        Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService wires the admin directory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admins service requires repository")
	}
	if params.TX == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admins service requires transaction runner")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.TX,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateAdminInput) (*CreatedAdminDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	passwordHash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Admin
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		adminRepo := s.repo.WithTx(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		role := "admin"
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    name,
			LastName:     "",
			Phone:        input.Phone,
			SystemRole:   &role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin user")
		}

		admin, err := adminRepo.Create(ctx, &models.Admin{
			ID:     uuid.New(),
			UserID: user.ID,
			Name:   name,
			Email:  email,
			Phone:  input.Phone,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
		}
		created = admin
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreatedAdminDTO{
		Admin:        FromModel(*created),
		TempPassword: tempPassword,
	}, nil
}

func (s *service) List(ctx context.Context) ([]AdminDTO, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
	}
	dtos := make([]AdminDTO, 0, len(admins))
	for _, admin := range admins {
		dtos = append(dtos, FromModel(admin))
	}
	return dtos, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*AdminDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	admin, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	dto := FromModel(*admin)
	return &dto, nil
}
