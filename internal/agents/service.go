package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/internal/users"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/security"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the agent directory: onboarding, removal, and the
// activity fields the attendance tracker depends on.
type Service interface {
	Create(ctx context.Context, input CreateAgentInput) (*CreatedAgentDTO, error)
	Delete(ctx context.Context, agentID uuid.UUID) error
	List(ctx context.Context) ([]AgentDTO, error)
	GetByID(ctx context.Context, agentID uuid.UUID) (*AgentDTO, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*AgentDTO, error)
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// ServiceParams names the dependencies for the agent directory.
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

// NewService wires the agent directory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "agents service requires repository")
	}
	if params.TX == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "agents service requires transaction runner")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.TX,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Create onboards an agent: a user account with a one-time temporary password
// plus the directory row, in one transaction.
func (s *service) Create(ctx context.Context, input CreateAgentInput) (*CreatedAgentDTO, error) {
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

	var created *models.ServiceAgent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		agentRepo := s.repo.WithTx(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		role := "agent"
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    name,
			LastName:     "",
			Phone:        input.Phone,
			SystemRole:   &role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent user")
		}

		agent, err := agentRepo.Create(ctx, &models.ServiceAgent{
			ID:     uuid.New(),
			UserID: user.ID,
			Name:   name,
			Email:  email,
			Phone:  input.Phone,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "agent email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
		}
		created = agent
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreatedAgentDTO{
		Agent:        FromModel(*created),
		TempPassword: tempPassword,
	}, nil
}

// Delete removes the agent and its user account. Agents still holding
// assignments are protected by the contributions foreign key and surface as a
// conflict; their work must be unassigned or revoked first.
func (s *service) Delete(ctx context.Context, agentID uuid.UUID) error {
	if agentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		agentRepo := s.repo.WithTx(tx)

		agent, err := agentRepo.FindByID(ctx, agentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
		}

		rows, err := agentRepo.Delete(ctx, agent.ID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "agent still holds assigned contributions")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete agent")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}

		userRepo := users.NewRepository(tx)
		if err := userRepo.DeleteTx(tx, agent.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete agent user")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context) ([]AgentDTO, error) {
	agents, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	dtos := make([]AgentDTO, 0, len(agents))
	for _, agent := range agents {
		dtos = append(dtos, FromModel(agent))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, agentID uuid.UUID) (*AgentDTO, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	agent, err := s.repo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	dto := FromModel(*agent)
	return &dto, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*AgentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	agent, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	dto := FromModel(*agent)
	return &dto, nil
}

func (s *service) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.repo.ResolveNames(ctx, ids)
}
