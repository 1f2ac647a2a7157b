package contributions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/internal/auditlog"
	"github.com/onestoplease/onestoplease-backend/pkg/db"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	dbtypes "github.com/onestoplease/onestoplease-backend/pkg/db/types"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/outbox"
	"github.com/onestoplease/onestoplease-backend/pkg/outbox/payloads"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

// Actor is the authenticated caller performing an operation. AgentID is set
// only when Role is agent; it comes from the signed token, never from request
// input.
type Actor struct {
	UserID  uuid.UUID
	AgentID *uuid.UUID
	Email   string
	Role    enums.Role
}

// AssignInput covers both the agent self-pick and the admin force-pick.
// TargetAgentID is required on the admin path and ignored on the agent path.
type AssignInput struct {
	ContributionID uuid.UUID
	Actor          Actor
	TargetAgentID  *uuid.UUID
}

// TransitionInput is shared by the assignee-only transitions.
type TransitionInput struct {
	ContributionID uuid.UUID
	Actor          Actor
}

// RejectInput adds the mandatory enumerated reason.
type RejectInput struct {
	ContributionID uuid.UUID
	Actor          Actor
	Reason         enums.RejectionReason
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, contributionID uuid.UUID, actor auditlog.Actor, action enums.AuditAction, metadata map[string]any) error
}

// agentDirectory resolves display names for assignee ids at read time.
type agentDirectory interface {
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service owns the contribution lifecycle: transition validation, actor
// authorization, and the audit plus outbox side effects that commit in the
// same transaction as each transition.
type Service interface {
	Create(ctx context.Context, input CreateContributionInput) (*ContributionDTO, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*ContributionDTO, error)
	ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ContributionList, error)
	ListQueue(ctx context.Context, params pagination.Params) (*ContributionList, error)
	ListAssigned(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*ContributionList, error)
	ListByStatus(ctx context.Context, status enums.ContributionStatus, params pagination.Params) (*ContributionList, error)

	Assign(ctx context.Context, input AssignInput) (*ContributionDTO, error)
	Unassign(ctx context.Context, input TransitionInput) (*ContributionDTO, error)
	Approve(ctx context.Context, input TransitionInput) (*ContributionDTO, error)
	Reject(ctx context.Context, input RejectInput) (*ContributionDTO, error)
	Revoke(ctx context.Context, input TransitionInput) (*ContributionDTO, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
}

type service struct {
	repo   Repository
	tx     txRunner
	audit  auditRecorder
	outbox outboxPublisher
	agents agentDirectory
}

// NewService wires the lifecycle service with its collaborators.
func NewService(repo Repository, tx txRunner, audit auditRecorder, publisher outboxPublisher, agents agentDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contributions service requires repository")
	}
	if tx == nil {
		return nil, fmt.Errorf("contributions service requires transaction runner")
	}
	if audit == nil {
		return nil, fmt.Errorf("contributions service requires audit recorder")
	}
	if publisher == nil {
		return nil, fmt.Errorf("contributions service requires outbox publisher")
	}
	if agents == nil {
		return nil, fmt.Errorf("contributions service requires agent directory")
	}
	return &service{repo: repo, tx: tx, audit: audit, outbox: publisher, agents: agents}, nil
}

func (s *service) Create(ctx context.Context, input CreateContributionInput) (*ContributionDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.ContributionType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution type must be sell or rent")
	}
	if input.ContactName == "" || input.ContactPhone == "" || input.Address == "" || input.Pincode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact name, phone, address and pincode are required")
	}
	if input.WarrantyCovered && (input.WarrantyStart == nil || input.WarrantyEnd == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warranty dates required when warranty is covered")
	}

	attributes := dbtypes.StringMap(input.Attributes)
	if attributes == nil {
		attributes = dbtypes.StringMap{}
	}
	row := &models.Contribution{
		ID:               uuid.New(),
		UserID:           input.UserID,
		ContactName:      input.ContactName,
		ContactPhone:     input.ContactPhone,
		Address:          input.Address,
		Landmark:         input.Landmark,
		LocationLink:     input.LocationLink,
		Pincode:          input.Pincode,
		ProductName:      input.ProductName,
		Description:      input.Description,
		ContributionType: input.ContributionType,
		ImageURLs:        input.ImageURLs,
		BillURL:          input.BillURL,
		Attributes:       attributes,
		ExpectedPrice:    input.ExpectedPrice,
		WarrantyCovered:  input.WarrantyCovered,
		WarrantyStart:    input.WarrantyStart,
		WarrantyEnd:      input.WarrantyEnd,
		Status:           enums.ContributionStatusPending,
	}

	var created *models.Contribution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		saved, err := repo.Create(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contribution")
		}

		actor := auditlog.Actor{ID: input.UserID, Email: input.ActorEmail, Role: enums.RoleUser}
		if err := s.audit.Record(ctx, tx, saved.ID, actor, enums.AuditActionSubmitted, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionSubmitted,
			AggregateType: enums.AggregateContribution,
			AggregateID:   saved.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.RoleUser.String()},
			Data: payloads.ContributionSubmittedEvent{
				ContributionID:   saved.ID,
				UserID:           saved.UserID,
				ProductName:      saved.ProductName,
				ContributionType: saved.ContributionType,
				Pincode:          saved.Pincode,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(*created, nil)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*ContributionDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}

	contribution, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contribution")
	}
	if err := authorizeRead(contribution, actor); err != nil {
		return nil, err
	}
	return s.toDTO(ctx, contribution)
}

// authorizeRead allows the owner, any admin, the current assignee, and any
// agent looking at an unassigned queue item.
func authorizeRead(contribution *models.Contribution, actor Actor) error {
	switch actor.Role {
	case enums.RoleAdmin:
		return nil
	case enums.RoleUser:
		if contribution.UserID == actor.UserID {
			return nil
		}
	case enums.RoleAgent:
		if actor.AgentID != nil && contribution.AssignedAgentID != nil && *contribution.AssignedAgentID == *actor.AgentID {
			return nil
		}
		if contribution.Status == enums.ContributionStatusPending && contribution.AssignedAgentID == nil {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "contribution not accessible")
}

func (s *service) ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ContributionList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contributions")
	}
	return s.buildPage(ctx, rows, params)
}

func (s *service) ListQueue(ctx context.Context, params pagination.Params) (*ContributionList, error) {
	rows, err := s.repo.ListQueue(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list queue")
	}
	return s.buildPage(ctx, rows, params)
}

func (s *service) ListAssigned(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*ContributionList, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	rows, err := s.repo.ListByAgent(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return s.buildPage(ctx, rows, params)
}

func (s *service) ListByStatus(ctx context.Context, status enums.ContributionStatus, params pagination.Params) (*ContributionList, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contribution status")
	}
	rows, err := s.repo.ListByStatus(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contributions by status")
	}
	return s.buildPage(ctx, rows, params)
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*ContributionDTO, error) {
	if input.ContributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}

	var agentID uuid.UUID
	switch input.Actor.Role {
	case enums.RoleAgent:
		if input.Actor.AgentID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
		}
		agentID = *input.Actor.AgentID
	case enums.RoleAdmin:
		if input.TargetAgentID == nil || *input.TargetAgentID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target agent id required")
		}
		agentID = *input.TargetAgentID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only agents and admins may assign")
	}

	var updated *models.Contribution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.Assign(ctx, input.ContributionID, agentID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown agent")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign contribution")
		}
		if rows == 0 {
			return s.diagnoseAssign(ctx, repo, input.ContributionID)
		}

		contribution, err := repo.FindByID(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contribution")
		}

		metadata := map[string]any{
			"agent_id":      agentID.String(),
			"self_assigned": input.Actor.Role == enums.RoleAgent,
		}
		if err := s.audit.Record(ctx, tx, contribution.ID, auditActor(input.Actor), enums.AuditActionAssigned, metadata); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionAssigned,
			AggregateType: enums.AggregateContribution,
			AggregateID:   contribution.ID,
			Version:       1,
			Actor:         outboxActor(input.Actor),
			Data: payloads.ContributionAssignmentEvent{
				ContributionID: contribution.ID,
				UserID:         contribution.UserID,
				AgentID:        agentID,
				Status:         contribution.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *service) Unassign(ctx context.Context, input TransitionInput) (*ContributionDTO, error) {
	agentID, err := requireAssignee(input.Actor)
	if err != nil {
		return nil, err
	}
	if input.ContributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}

	var updated *models.Contribution
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.Unassign(ctx, input.ContributionID, agentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign contribution")
		}
		if rows == 0 {
			return s.diagnoseAssigneeTransition(ctx, repo, input.ContributionID, agentID)
		}

		contribution, err := repo.FindByID(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contribution")
		}

		if err := s.audit.Record(ctx, tx, contribution.ID, auditActor(input.Actor), enums.AuditActionUnassigned, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionUnassigned,
			AggregateType: enums.AggregateContribution,
			AggregateID:   contribution.ID,
			Version:       1,
			Actor:         outboxActor(input.Actor),
			Data: payloads.ContributionAssignmentEvent{
				ContributionID: contribution.ID,
				UserID:         contribution.UserID,
				AgentID:        agentID,
				Status:         contribution.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *service) Approve(ctx context.Context, input TransitionInput) (*ContributionDTO, error) {
	agentID, err := requireAssignee(input.Actor)
	if err != nil {
		return nil, err
	}
	if input.ContributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}

	var updated *models.Contribution
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.Approve(ctx, input.ContributionID, agentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve contribution")
		}
		if rows == 0 {
			return s.diagnoseAssigneeTransition(ctx, repo, input.ContributionID, agentID)
		}

		contribution, err := repo.FindByID(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contribution")
		}

		if err := s.audit.Record(ctx, tx, contribution.ID, auditActor(input.Actor), enums.AuditActionApproved, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionApproved,
			AggregateType: enums.AggregateContribution,
			AggregateID:   contribution.ID,
			Version:       1,
			Actor:         outboxActor(input.Actor),
			Data: payloads.ContributionDecisionEvent{
				ContributionID: contribution.ID,
				UserID:         contribution.UserID,
				AgentID:        agentID,
				Status:         contribution.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*ContributionDTO, error) {
	agentID, err := requireAssignee(input.Actor)
	if err != nil {
		return nil, err
	}
	if input.ContributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason must be one of the accepted values")
	}

	var updated *models.Contribution
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.Reject(ctx, input.ContributionID, agentID, input.Reason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject contribution")
		}
		if rows == 0 {
			return s.diagnoseAssigneeTransition(ctx, repo, input.ContributionID, agentID)
		}

		contribution, err := repo.FindByID(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contribution")
		}

		metadata := map[string]any{"reason": input.Reason.String()}
		if err := s.audit.Record(ctx, tx, contribution.ID, auditActor(input.Actor), enums.AuditActionRejected, metadata); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionRejected,
			AggregateType: enums.AggregateContribution,
			AggregateID:   contribution.ID,
			Version:       1,
			Actor:         outboxActor(input.Actor),
			Data: payloads.ContributionDecisionEvent{
				ContributionID:  contribution.ID,
				UserID:          contribution.UserID,
				AgentID:         agentID,
				Status:          contribution.Status,
				RejectionReason: contribution.RejectionReason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *service) Revoke(ctx context.Context, input TransitionInput) (*ContributionDTO, error) {
	if input.Actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may revoke")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ContributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}

	var updated *models.Contribution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.Revoke(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke contribution")
		}
		if rows == 0 {
			contribution, err := repo.FindByID(ctx, input.ContributionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contribution")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("revoke requires a rejected contribution, current status is %s", contribution.Status))
		}

		contribution, err := repo.FindByID(ctx, input.ContributionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload contribution")
		}

		if err := s.audit.Record(ctx, tx, contribution.ID, auditActor(input.Actor), enums.AuditActionRevoked, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionRevoked,
			AggregateType: enums.AggregateContribution,
			AggregateID:   contribution.ID,
			Version:       1,
			Actor:         outboxActor(input.Actor),
			Data: payloads.ContributionRevokedEvent{
				ContributionID: contribution.ID,
				UserID:         contribution.UserID,
				AdminUserID:    input.Actor.UserID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		contribution, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contribution")
		}
		if contribution.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "contribution not owned by caller")
		}

		rows, err := repo.Delete(ctx, id, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contribution")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
		}

		// Audit rows deliberately outlive the contribution they describe.
		if err := s.audit.Record(ctx, tx, id, auditActor(actor), enums.AuditActionDeleted, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventContributionDeleted,
			AggregateType: enums.AggregateContribution,
			AggregateID:   id,
			Version:       1,
			Actor:         outboxActor(actor),
			Data: payloads.ContributionDeletedEvent{
				ContributionID: id,
				UserID:         actor.UserID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

// diagnoseAssign explains a zero-row assign: the row is gone, already taken,
// or no longer pending.
func (s *service) diagnoseAssign(ctx context.Context, repo Repository, id uuid.UUID) error {
	contribution, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contribution")
	}
	if contribution.AssignedAgentID != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "contribution already assigned")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("assignment requires a pending contribution, current status is %s", contribution.Status))
}

// diagnoseAssigneeTransition explains a zero-row assignee-only transition.
func (s *service) diagnoseAssigneeTransition(ctx context.Context, repo Repository, id, agentID uuid.UUID) error {
	contribution, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contribution not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contribution")
	}
	if contribution.Status == enums.ContributionStatusAssigned {
		if contribution.AssignedAgentID == nil || *contribution.AssignedAgentID != agentID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "contribution assigned to another agent")
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("transition requires an assigned contribution, current status is %s", contribution.Status))
}

func requireAssignee(actor Actor) (uuid.UUID, error) {
	if actor.Role != enums.RoleAgent {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned agent may perform this action")
	}
	if actor.AgentID == nil || *actor.AgentID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	return *actor.AgentID, nil
}

func auditActor(actor Actor) auditlog.Actor {
	return auditlog.Actor{ID: actor.UserID, Email: actor.Email, Role: actor.Role}
}

func outboxActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, AgentID: actor.AgentID, Role: actor.Role.String()}
}

func (s *service) toDTO(ctx context.Context, contribution *models.Contribution) (*ContributionDTO, error) {
	names, err := s.resolveAgentNames(ctx, []models.Contribution{*contribution})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*contribution, names)
	return &dto, nil
}

func (s *service) buildPage(ctx context.Context, rows []models.Contribution, params pagination.Params) (*ContributionList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	names, err := s.resolveAgentNames(ctx, rows)
	if err != nil {
		return nil, err
	}

	dtos := make([]ContributionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row, names))
	}
	return &ContributionList{Contributions: dtos, NextCursor: next}, nil
}

func (s *service) resolveAgentNames(ctx context.Context, rows []models.Contribution) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, row := range rows {
		if row.AssignedAgentID == nil {
			continue
		}
		if _, ok := seen[*row.AssignedAgentID]; ok {
			continue
		}
		seen[*row.AssignedAgentID] = struct{}{}
		ids = append(ids, *row.AssignedAgentID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	names, err := s.agents.ResolveNames(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve agent names")
	}
	return names, nil
}
